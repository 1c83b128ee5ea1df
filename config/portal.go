package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Portal is the fixed contract with the remote UI: locators for every
// element the scraper touches and the text anchors used to cut fields
// out of free-text blocks. A markup or copy change on the portal side
// means editing this contract, not the scraper.
type Portal struct {
	Selectors Selectors `yaml:"selectors"`
	Anchors   Anchors   `yaml:"anchors"`
	Tabs      Tabs      `yaml:"tabs"`
}

type Selectors struct {
	SearchTypeSelect string `yaml:"search_type_select"`
	StateSelect      string `yaml:"state_select"`
	KeywordInput     string `yaml:"keyword_input"`
	SearchButton     string `yaml:"search_button"`

	ListingTable string `yaml:"listing_table"`
	ListingRows  string `yaml:"listing_rows"`
	NextPage     string `yaml:"next_page"`
	DetailOpen   string `yaml:"detail_open"`
	SideTab      string `yaml:"side_tab"` // format arg: lowercase tab text

	InfoFieldValue  string `yaml:"info_field_value"` // format arg: label text
	MapIframe       string `yaml:"map_iframe"`
	StatusContainer string `yaml:"status_container"`
	StatusTable     string `yaml:"status_table"`
	StatusTableAlt  string `yaml:"status_table_alt"`

	UnitModalButton string `yaml:"unit_modal_button"`
	ListViewButton  string `yaml:"list_view_button"`
	ListViewActive  string `yaml:"list_view_active"`
	UnitTable       string `yaml:"unit_table"`
	ModalClose      string `yaml:"modal_close"`
}

type Anchors struct {
	DevelopmentInfo AnchoredField `yaml:"development_info"`
	OverallStatus   AnchoredField `yaml:"overall_status"`
	TableCut        string        `yaml:"table_cut"`

	DistrictLabel    string `yaml:"district_label"`
	StateLabel       string `yaml:"state_label"`
	PermitValidLabel string `yaml:"permit_valid_label"`
}

// AnchoredField names the label a value follows and the labels that end
// its capture inside a free-text status block.
type AnchoredField struct {
	Label string   `yaml:"label"`
	Stops []string `yaml:"stops"`
}

type Tabs struct {
	Info   string `yaml:"info"`
	Status string `yaml:"status"`
}

// LoadPortal reads the portal contract from a YAML file. A missing file
// falls back to the built-in defaults so a dry run needs no config dir.
func LoadPortal(path string) (*Portal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPortal(), nil
		}
		return nil, fmt.Errorf("read portal config: %w", err)
	}

	portal := DefaultPortal()
	if err := yaml.Unmarshal(data, portal); err != nil {
		return nil, fmt.Errorf("parse portal config: %w", err)
	}
	return portal, nil
}

func DefaultPortal() *Portal {
	return &Portal{
		Selectors: Selectors{
			SearchTypeSelect: "xpath=//label[contains(normalize-space(.),'Jenis Carian')]/following::select[1]",
			StateSelect:      "xpath=//label[contains(normalize-space(.),'Negeri')]/following::select[1]",
			KeywordInput:     "input[placeholder='Kata Kunci']",
			SearchButton:     "button.btn-search, button:has-text('Cari'), button:has-text('CARI')",

			ListingTable: "xpath=//table[.//tbody//tr]",
			ListingRows:  "xpath=//table[.//tbody//tr]//tbody//tr",
			NextPage:     "button.page-btn:has(i.pi-chevron-right), button:has(i.pi-chevron-right)",
			DetailOpen:   "i.pi-eye, i.tindakan-eye",
			SideTab:      "xpath=//span[contains(translate(normalize-space(.),'ABCDEFGHIJKLMNOPQRSTUVWXYZ','abcdefghijklmnopqrstuvwxyz'),'%s')]/ancestor::*[self::button or self::a][1]",

			InfoFieldValue:  "xpath=//h4[normalize-space(.)='%s']/parent::div/following-sibling::div[1]",
			MapIframe:       "iframe[src*='google.com/maps'], iframe[src*='maps.google.com/maps']",
			StatusContainer: "xpath=//*[contains(normalize-space(.),'Status Terkini Projek')]/ancestor::div[contains(@class,'card')][1]",
			StatusTable:     "table.table-status",
			StatusTableAlt:  "div.status-table-wrap table",

			UnitModalButton: "button:has-text('Lihat Terperinci Unit')",
			ListViewButton:  "button.view-btn[title='Paparan Senarai']",
			ListViewActive:  "button.view-btn.active[title='Paparan Senarai']",
			UnitTable:       "table.unit-list-table",
			ModalClose:      "button:has-text('TUTUP'), button:has-text('Tutup')",
		},
		Anchors: Anchors{
			DevelopmentInfo: AnchoredField{
				Label: "Maklumat Pembangunan",
				Stops: []string{"Status Keseluruhan :"},
			},
			OverallStatus: AnchoredField{
				Label: "Status Keseluruhan",
				Stops: []string{"Status komponen", "Jenis Rumah"},
			},
			TableCut: "Jenis Rumah",

			DistrictLabel:    "Daerah Projek",
			StateLabel:       "Negeri Projek",
			PermitValidLabel: "Tarikh Sah Laku Permit Terkini",
		},
		Tabs: Tabs{
			Info:   "maklumat projek",
			Status: "status terkini projek",
		},
	}
}
