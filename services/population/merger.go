package population

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"importer/models"
	"importer/models/constants"

	"github.com/go-gota/gota/dataframe"
	"github.com/labstack/gommon/log"
)

const (
	idColumn          = "id"
	latitudeColumn    = "latitude"
	longitudeColumn   = "longitude"
	elevationColumn   = "elevation"
	descriptionColumn = "description"
)

var requiredColumns = []string{idColumn, latitudeColumn, longitudeColumn}

// values gota and spreadsheets leave behind for empty cells
var nullValues = map[string]bool{"": true, "NA": true, "NaN": true, "<nil>": true}

type Merger struct {
	logger *log.Logger
}

func NewMerger(logger *log.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge joins the location attributes file at path with the VCF sample ids and builds
// the population. The id column must cover exactly the sample ids.
func (m *Merger) Merge(path string, sampleIds []string, description string) (*models.PopulationRecord, error) {
	if description == "" {
		description = constants.DefaultPopulationDescription
	}

	table, err := loadTable(path)
	if err != nil {
		return nil, err
	}

	columns := table.Names()
	if err := checkRequiredColumns(columns); err != nil {
		return nil, &models.AttributeSchemaError{Path: path, Reason: err.Error()}
	}

	elevationIndex := indexOfColumn(columns, elevationColumn)
	descriptionIndex := indexOfColumn(columns, descriptionColumn)
	if elevationIndex < 0 {
		m.logger.Debugf("%s has no %s column, using %.1f", path, elevationColumn, constants.DefaultElevation)
	}
	if descriptionIndex < 0 {
		m.logger.Debugf("%s has no %s column, using %q", path, descriptionColumn, constants.DefaultStrainDescription)
	}

	// rows without an id or coordinates are dropped
	records := table.Records()[1:]
	rows := make([][]string, 0, len(records))
	for _, row := range records {
		if isNull(row[0]) || isNull(row[1]) || isNull(row[2]) {
			continue
		}
		rows = append(rows, row)
	}
	if dropped := len(records) - len(rows); dropped > 0 {
		m.logger.Infof("Dropped %d incomplete rows from %s", dropped, path)
	}

	attributeIds := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		attributeIds[strings.TrimSpace(row[0])] = struct{}{}
	}
	if err := compareIds(path, attributeIds, sampleIds); err != nil {
		return nil, err
	}

	population := &models.PopulationRecord{
		Description: description,
		Strains:     make([]models.StrainInfo, 0, len(rows)),
	}
	for _, row := range rows {
		location, err := locationFromRow(row, elevationIndex, descriptionIndex)
		if err != nil {
			return nil, &models.AttributeSchemaError{Path: path, Reason: fmt.Sprintf("row for %s: %v", row[0], err)}
		}
		population.Strains = append(population.Strains, models.StrainInfo{
			SourceId:     strings.TrimSpace(row[0]),
			LocationInfo: location,
		})
	}

	m.logger.Infof("Built population of %d strains from %s", len(population.Strains), path)
	return population, nil
}

// loadTable reads the tab separated file leniently: short rows are padded to the
// header width so they end up as null cells, and stray quotes inside fields are kept.
func loadTable(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, &models.AttributeSchemaError{Path: path, Reason: err.Error()}
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, &models.AttributeSchemaError{Path: path, Reason: "file is empty"}
	}

	width := len(records[0])
	for i, record := range records[1:] {
		switch {
		case len(record) < width:
			padded := make([]string, width)
			copy(padded, record)
			records[i+1] = padded
		case len(record) > width:
			// trailing empty cells past the header are harmless
			for _, extra := range record[width:] {
				if strings.TrimSpace(extra) != "" {
					return dataframe.DataFrame{}, &models.AttributeSchemaError{
						Path:   path,
						Reason: fmt.Sprintf("row %d has %d fields, header has %d", i+2, len(record), width),
					}
				}
			}
			records[i+1] = record[:width]
		}
	}

	table := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false))
	if table.Err != nil {
		return dataframe.DataFrame{}, &models.AttributeSchemaError{Path: path, Reason: table.Err.Error()}
	}
	return table, nil
}

func checkRequiredColumns(columns []string) error {
	if len(columns) < len(requiredColumns) {
		return fmt.Errorf("expected leading columns %s, found %s",
			strings.Join(requiredColumns, ","), strings.Join(columns, ","))
	}
	for i, required := range requiredColumns {
		if !strings.EqualFold(strings.TrimSpace(columns[i]), required) {
			return fmt.Errorf("column %d must be %q, found %q", i+1, required, columns[i])
		}
	}
	return nil
}

func indexOfColumn(columns []string, name string) int {
	for i, column := range columns {
		if strings.EqualFold(strings.TrimSpace(column), name) {
			return i
		}
	}
	return -1
}

func compareIds(path string, attributeIds map[string]struct{}, sampleIds []string) error {
	samples := make(map[string]struct{}, len(sampleIds))
	for _, id := range sampleIds {
		samples[id] = struct{}{}
	}

	missing := []string{}
	for id := range samples {
		if _, ok := attributeIds[id]; !ok {
			missing = append(missing, id)
		}
	}
	unexpected := []string{}
	for id := range attributeIds {
		if _, ok := samples[id]; !ok {
			unexpected = append(unexpected, id)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(unexpected)
	return &models.SampleMismatchError{
		Path:             path,
		AttributeIdCount: len(attributeIds),
		SampleIdCount:    len(samples),
		Missing:          missing,
		Unexpected:       unexpected,
	}
}

func locationFromRow(row []string, elevationIndex int, descriptionIndex int) (models.Location, error) {
	location := models.Location{
		Elevation:   constants.DefaultElevation,
		Description: constants.DefaultStrainDescription,
	}

	var err error
	if location.Latitude, err = parseCoordinate(row[1], latitudeColumn, 90); err != nil {
		return location, err
	}
	if location.Longitude, err = parseCoordinate(row[2], longitudeColumn, 180); err != nil {
		return location, err
	}

	if elevationIndex >= 0 && !isNull(row[elevationIndex]) {
		if location.Elevation, err = strconv.ParseFloat(strings.TrimSpace(row[elevationIndex]), 64); err != nil {
			return location, fmt.Errorf("%s %q is not a number", elevationColumn, row[elevationIndex])
		}
	}
	if descriptionIndex >= 0 && !isNull(row[descriptionIndex]) {
		location.Description = strings.TrimSpace(row[descriptionIndex])
	}

	return location, nil
}

func parseCoordinate(value string, name string, bound float64) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, value)
	}
	if parsed < -bound || parsed > bound {
		return 0, fmt.Errorf("%s %v is outside [%v,%v]", name, parsed, -bound, bound)
	}
	return parsed, nil
}

func isNull(value string) bool {
	return nullValues[strings.TrimSpace(value)]
}
