package services

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"teduh_scraper/models"
)

// Collector gathers one day's snapshot files from the per-developer
// directories and maps their Malay columns to the live-table schemas.
// A record family whose column is missing from a file gets "" so an
// older snapshot layout still loads.
type Collector struct {
	Root string
}

func NewCollector(root string) *Collector {
	return &Collector{Root: root}
}

type CollectResult struct {
	Units        []models.Unit
	Projects     []models.Project
	HouseTypes   []models.HouseType
	FilesScanned int
}

// Collect walks the snapshot tree and loads every CSV whose filename
// carries the date tag, classified by record-family marker.
func (c *Collector) Collect(dateTag string) (*CollectResult, error) {
	base := filepath.Join(c.Root, "data", "pemaju")
	result := &CollectResult{}

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".csv") {
			return nil
		}
		if !strings.Contains(d.Name(), dateTag) {
			return nil
		}

		rows, err := readCSV(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		result.FilesScanned++

		switch {
		case strings.Contains(d.Name(), models.FamilyUnitDetails):
			result.Units = append(result.Units, mapUnits(rows)...)
		case strings.Contains(d.Name(), models.FamilyProjects):
			result.Projects = append(result.Projects, mapProjects(rows)...)
		case strings.Contains(d.Name(), models.FamilyHouseTypes):
			result.HouseTypes = append(result.HouseTypes, mapHouseTypes(rows)...)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	return result, nil
}

// readCSV loads a snapshot into header-keyed rows, stripping the UTF-8
// BOM the extraction phase writes.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	var rows []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func mapUnits(rows []map[string]string) []models.Unit {
	units := make([]models.Unit, 0, len(rows))
	for _, row := range rows {
		code, name := SplitCodeName(row["Kod Projek & Nama Projek"])
		units = append(units, models.Unit{
			ProjectCode:      code,
			ProjectName:      name,
			PemajuName:       row["Kod Pemaju & Nama Pemaju"],
			PermitNo:         row["No. Permit"],
			UnitNo:           row["No Unit"],
			PriceSales:       row["Harga Jualan (RM)"],
			Status:           row["Status Jualan"],
			BumiQuota:        row["Kuota Bumi"],
			ScrapedDate:      row["Scraped_Date"],
			ScrapedTimestamp: row["Scraped_Timestamp"],
		})
	}
	return units
}

func mapProjects(rows []map[string]string) []models.Project {
	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		code, name := SplitCodeName(row["Kod Projek & Nama Projek"])
		projects = append(projects, models.Project{
			ProjectCode:      code,
			ProjectName:      name,
			PemajuName:       row["Kod Pemaju & Nama Pemaju"],
			PermitNo:         row["No. Permit"],
			StatusOverall:    row["Status Projek Keseluruhan"],
			DevelopmentInfo:  row["Maklumat Pembangunan"],
			LocationDistrict: row["Daerah Projek"],
			LocationState:    row["Negeri Projek"],
			PermitValidDate:  row["Tarikh Sah Laku Permit Terkini"],
			ScrapedDate:      row["Scraped_Date"],
			ScrapedTimestamp: row["Scraped_Timestamp"],
		})
	}
	return projects
}

func mapHouseTypes(rows []map[string]string) []models.HouseType {
	houseTypes := make([]models.HouseType, 0, len(rows))
	for _, row := range rows {
		houseTypes = append(houseTypes, models.HouseType{
			ProjectCode:      row["Kod Projek"],
			ProjectName:      row["Nama Projek"],
			HouseType:        row["Jenis Rumah"],
			NumFloors:        row["Bil Tingkat"],
			NumRooms:         row["Bil Bilik"],
			NumBathrooms:     row["Bil Tandas"],
			BuiltUpSize:      row["Keluasan Binaan (Mps)"],
			TotalUnits:       row["Bil.Unit"],
			PriceMin:         row["Harga Minimum (RM)"],
			PriceMax:         row["Harga Maksimum (RM)"],
			PercentActual:    row["Peratus Sebenar %"],
			ComponentStatus:  row["Status Komponen"],
			DateCCCCFO:       row["Tarikh CCC/CFO"],
			DateVP:           row["Tarikh VP"],
			ScrapedDate:      row["Scraped_Date"],
			ScrapedTimestamp: row["Scraped_Timestamp"],
		})
	}
	return houseTypes
}
