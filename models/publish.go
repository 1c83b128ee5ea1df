package models

// Canonical rows for the publish phase. Column names follow the live
// table schemas; values stay as raw snapshot text (prices are cleaned
// only when aggregating history).

type Unit struct {
	ProjectCode      string `json:"project_code" db:"project_code"`
	ProjectName      string `json:"project_name" db:"project_name"`
	PemajuName       string `json:"pemaju_name" db:"pemaju_name"`
	PermitNo         string `json:"permit_no" db:"permit_no"`
	UnitNo           string `json:"unit_no" db:"unit_no"`
	PriceSales       string `json:"price_sales" db:"price_sales"`
	Status           string `json:"status" db:"status"`
	BumiQuota        string `json:"bumi_quota" db:"bumi_quota"`
	ScrapedDate      string `json:"scraped_date" db:"scraped_date"`
	ScrapedTimestamp string `json:"scraped_timestamp" db:"scraped_timestamp"`
}

type Project struct {
	ProjectCode      string `json:"project_code" db:"project_code"`
	ProjectName      string `json:"project_name" db:"project_name"`
	PemajuName       string `json:"pemaju_name" db:"pemaju_name"`
	PermitNo         string `json:"permit_no" db:"permit_no"`
	StatusOverall    string `json:"status_overall" db:"status_overall"`
	DevelopmentInfo  string `json:"development_info" db:"development_info"`
	LocationDistrict string `json:"location_district" db:"location_district"`
	LocationState    string `json:"location_state" db:"location_state"`
	PermitValidDate  string `json:"permit_valid_date" db:"permit_valid_date"`
	ScrapedDate      string `json:"scraped_date" db:"scraped_date"`
	ScrapedTimestamp string `json:"scraped_timestamp" db:"scraped_timestamp"`
}

type HouseType struct {
	ProjectCode      string `json:"project_code" db:"project_code"`
	ProjectName      string `json:"project_name" db:"project_name"`
	HouseType        string `json:"house_type" db:"house_type"`
	NumFloors        string `json:"num_floors" db:"num_floors"`
	NumRooms         string `json:"num_rooms" db:"num_rooms"`
	NumBathrooms     string `json:"num_bathrooms" db:"num_bathrooms"`
	BuiltUpSize      string `json:"built_up_size" db:"built_up_size"`
	TotalUnits       string `json:"total_units" db:"total_units"`
	PriceMin         string `json:"price_min" db:"price_min"`
	PriceMax         string `json:"price_max" db:"price_max"`
	PercentActual    string `json:"percent_actual" db:"percent_actual"`
	ComponentStatus  string `json:"component_status" db:"component_status"`
	DateCCCCFO       string `json:"date_ccc_cfo" db:"date_ccc_cfo"`
	DateVP           string `json:"date_vp" db:"date_vp"`
	ScrapedDate      string `json:"scraped_date" db:"scraped_date"`
	ScrapedTimestamp string `json:"scraped_timestamp" db:"scraped_timestamp"`
}

// HistoryLogEntry is one per-project sales aggregate. At most one entry
// may exist per (project_code, scraped_date) pair; the publisher drops
// candidates whose pair is already stored.
type HistoryLogEntry struct {
	ProjectCode   string  `json:"project_code" db:"project_code"`
	ProjectName   string  `json:"project_name" db:"project_name"`
	DeveloperName string  `json:"developer_name" db:"developer_name"`
	ScrapedDate   string  `json:"scraped_date" db:"scraped_date"`
	TotalUnits    int     `json:"total_units" db:"total_units"`
	UnitsSold     int     `json:"units_sold" db:"units_sold"`
	UnitsBumi     int     `json:"units_bumi" db:"units_bumi"`
	UnitsUnsold   int     `json:"units_unsold" db:"units_unsold"`
	SalesValue    float64 `json:"sales_value" db:"sales_value"`
	TakeUpRate    float64 `json:"take_up_rate" db:"take_up_rate"`
}

// PublishResult summarizes one publish run.
type PublishResult struct {
	Aborted          bool   `json:"aborted"`
	AbortReason      string `json:"abort_reason,omitempty"`
	FilesScanned     int    `json:"files_scanned"`
	UnitsLoaded      int    `json:"units_loaded"`
	ProjectsLoaded   int    `json:"projects_loaded"`
	HouseTypesLoaded int    `json:"house_types_loaded"`
	HistoryAppended  int    `json:"history_appended"`
	HistorySkipped   int    `json:"history_skipped"`
}
