package models

// Record family markers used in snapshot filenames. The publish phase
// classifies files by these substrings, so they must stay in sync with
// the collector.
const (
	FamilyProjects    = "ALL_PROJECTS"
	FamilyHouseTypes  = "HOUSE_TYPE"
	FamilyUnitDetails = "UNIT_DETAILS"
)

// Snapshot CSV column orders. These are a wire contract with the publish
// phase: reordering a list here requires a matching change in the
// collector's column mapping.
var (
	ProjectMasterHeaders = []string{
		"Bil",
		"Kod Projek & Nama Projek",
		"Kod Pemaju & Nama Pemaju",
		"No. Permit",
		"Status Projek Keseluruhan",
		"Maklumat Pembangunan",
		"Lokasi Projek",
		"Daerah Projek",
		"Negeri Projek",
		"Tarikh Sah Laku Permit Terkini",
		"Scraped_Date",
		"Scraped_Timestamp",
	}

	HouseTypeHeaders = []string{
		"Kod Projek",
		"Nama Projek",
		"Jenis Rumah",
		"Bil Tingkat",
		"Bil Bilik",
		"Bil Tandas",
		"Keluasan Binaan (Mps)",
		"Bil.Unit",
		"Harga Minimum (RM)",
		"Harga Maksimum (RM)",
		"Peratus Sebenar %",
		"Status Komponen",
		"Tarikh CCC/CFO",
		"Tarikh VP",
		"Scraped_Date",
		"Scraped_Timestamp",
	}

	UnitDetailHeaders = []string{
		"Bil",
		"Kod Projek & Nama Projek",
		"Kod Pemaju & Nama Pemaju",
		"No. Permit",
		"No PT/Lot/Plot",
		"No Unit",
		"Harga Jualan (RM)",
		"Harga SPJB (RM)",
		"Status Jualan",
		"Kuota Bumi",
		"Scraped_Date",
		"Scraped_Timestamp",
	}
)

// ProjectMasterRecord is one row of a project master snapshot. Fields are
// raw portal text; unreadable fields stay empty.
type ProjectMasterRecord struct {
	SequenceNo        string `json:"sequence_no"`
	ProjectCodeName   string `json:"project_code_name"`
	DeveloperCodeName string `json:"developer_code_name"`
	PermitNo          string `json:"permit_no"`
	OverallStatus     string `json:"overall_status"`
	DevelopmentInfo   string `json:"development_info"`
	LocationMapLink   string `json:"location_map_link"`
	District          string `json:"district"`
	State             string `json:"state"`
	PermitValidDate   string `json:"permit_valid_date"`
	ScrapedDate       string `json:"scraped_date"`
	ScrapedTimestamp  string `json:"scraped_timestamp"`
}

// Row returns the record in ProjectMasterHeaders order.
func (r ProjectMasterRecord) Row() []string {
	return []string{
		r.SequenceNo,
		r.ProjectCodeName,
		r.DeveloperCodeName,
		r.PermitNo,
		r.OverallStatus,
		r.DevelopmentInfo,
		r.LocationMapLink,
		r.District,
		r.State,
		r.PermitValidDate,
		r.ScrapedDate,
		r.ScrapedTimestamp,
	}
}

// HouseTypeRecord is one row of the detail view's status table, keyed by
// the already-split project code and name.
type HouseTypeRecord struct {
	ProjectCode      string `json:"project_code"`
	ProjectName      string `json:"project_name"`
	HouseType        string `json:"house_type"`
	Floors           string `json:"floors"`
	Rooms            string `json:"rooms"`
	Bathrooms        string `json:"bathrooms"`
	BuiltUpSize      string `json:"built_up_size"`
	UnitCount        string `json:"unit_count"`
	PriceMin         string `json:"price_min"`
	PriceMax         string `json:"price_max"`
	PercentActual    string `json:"percent_actual"`
	ComponentStatus  string `json:"component_status"`
	DateCCCCFO       string `json:"date_ccc_cfo"`
	DateVP           string `json:"date_vp"`
	ScrapedDate      string `json:"scraped_date"`
	ScrapedTimestamp string `json:"scraped_timestamp"`
}

// Row returns the record in HouseTypeHeaders order.
func (r HouseTypeRecord) Row() []string {
	return []string{
		r.ProjectCode,
		r.ProjectName,
		r.HouseType,
		r.Floors,
		r.Rooms,
		r.Bathrooms,
		r.BuiltUpSize,
		r.UnitCount,
		r.PriceMin,
		r.PriceMax,
		r.PercentActual,
		r.ComponentStatus,
		r.DateCCCCFO,
		r.DateVP,
		r.ScrapedDate,
		r.ScrapedTimestamp,
	}
}

// UnitDetailRecord is one row of the unit modal's list view. SequenceNo
// increments across the whole run, not per project.
type UnitDetailRecord struct {
	SequenceNo        string `json:"sequence_no"`
	ProjectCodeName   string `json:"project_code_name"`
	DeveloperCodeName string `json:"developer_code_name"`
	PermitNo          string `json:"permit_no"`
	LotNo             string `json:"lot_no"`
	UnitNo            string `json:"unit_no"`
	SalePrice         string `json:"sale_price"`
	SPJBPrice         string `json:"spjb_price"`
	SaleStatus        string `json:"sale_status"`
	BumiQuota         string `json:"bumi_quota"`
	ScrapedDate       string `json:"scraped_date"`
	ScrapedTimestamp  string `json:"scraped_timestamp"`
}

// Row returns the record in UnitDetailHeaders order.
func (r UnitDetailRecord) Row() []string {
	return []string{
		r.SequenceNo,
		r.ProjectCodeName,
		r.DeveloperCodeName,
		r.PermitNo,
		r.LotNo,
		r.UnitNo,
		r.SalePrice,
		r.SPJBPrice,
		r.SaleStatus,
		r.BumiQuota,
		r.ScrapedDate,
		r.ScrapedTimestamp,
	}
}
