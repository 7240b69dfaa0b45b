package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"prodsheet/pkg/contracts/domain"
)

// Canonical field names used by the alias table and the normalizer.
const (
	FieldItemID              = "item_id"
	FieldItemName            = "item_name"
	FieldItemDetail          = "item_detail"
	FieldItemType            = "item_type"
	FieldLogType             = "log_type"
	FieldLogOwner            = "log_owner"
	FieldLogDate             = "log_date"
	FieldLogHoursDecimal     = "log_hours_decimal"
	FieldTeamName            = "team_name"
	FieldEpic                = "epic"
	FieldReportedBy          = "reported_by"
	FieldRemarks             = "remarks"
	FieldZohoLink            = "zoho_link"
	FieldApplication         = "application"
	FieldProjectName         = "project_name"
	FieldStatus              = "status"
	FieldEstimatedPoints     = "estimated_points"
	FieldActualPoints        = "actual_points"
	FieldRequestedDate       = "requested_date"
	FieldStartDate           = "start_date"
	FieldReleaseDate         = "release_date"
	FieldExpectedStartDate   = "expected_start_date"
	FieldExpectedReleaseDate = "expected_release_date"
	FieldActualStartDate     = "actual_start_date"
	FieldActualReleaseDate   = "actual_release_date"
	FieldCompletedOn         = "completed_on"
)

// AliasTable maps a canonical field to the ordered list of header aliases
// that may carry it. Earlier aliases win. The table is plain data so the
// resolution logic stays independently testable.
type AliasTable map[string][]string

// DefaultAliasTable covers the header variants observed across Zoho timesheet
// and work-item exports.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		FieldItemID:          {"item_id", "itemid"},
		FieldItemName:        {"item_name", "itemname", "name", "title"},
		FieldItemDetail:      {"item_detail", "itemdetail", "meeting_title", "meetingtitle", "detail", "description", "cts"},
		FieldItemType:        {"item_type", "itemtype"},
		FieldLogType:         {"log_type", "logtype", "type"},
		FieldLogOwner:        {"log_owner", "logowner", "owner"},
		FieldLogDate:         {"log_date", "logdate", "date"},
		FieldLogHoursDecimal: {"log_hours", "log_hours_decimal", "loghours"},
		FieldTeamName:        {"team_name", "teamname", "team"},
		FieldEpic:            {"epic"},
		FieldReportedBy:      {"reported_by", "reportedby"},
		FieldRemarks:         {"remarks", "notes", "comment", "description", "descriptions"},
		FieldZohoLink:        {"zoho_link", "zoholink", "link", "url"},
		FieldApplication:     {"application", "app"},
		FieldProjectName:     {"project_name", "projectname"},
		FieldStatus:          {"status"},
		FieldEstimatedPoints: {"estimation_points", "estimationpoints", "estimated_points", "estimated", "points"},
		FieldActualPoints:    {"actual_points", "actualpoints", "actual"},

		FieldRequestedDate:       {"requested_date", "requesteddate", "requested"},
		FieldStartDate:           {"start_date", "startdate"},
		FieldReleaseDate:         {"release_date", "releasedate", "end_date"},
		FieldExpectedStartDate:   {"expected_start_date", "expectedstartdate"},
		FieldExpectedReleaseDate: {"expected_release_date", "expectedreleasedate"},
		FieldActualStartDate:     {"actual_start_date", "actualstartdate"},
		FieldActualReleaseDate:   {"actual_release_date", "actualreleasedate"},
		FieldCompletedOn:         {"completed_on", "completedon"},
	}
}

var headerSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey canonicalizes a header label: lower-cased, every run of
// characters outside [a-z0-9] collapsed to a single underscore, leading and
// trailing underscores trimmed. "Item Name", "item_name" and "ITEM-NAME" all
// normalize to the same key.
func NormalizeKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = headerSeparatorRe.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// Normalizer maps raw spreadsheet rows onto canonical timesheet entries.
type Normalizer struct {
	table     AliasTable
	zohoLinkF string
}

// NewNormalizer creates a normalizer over the given alias table. A nil table
// uses the default one.
func NewNormalizer(table AliasTable) *Normalizer {
	if table == nil {
		table = DefaultAliasTable()
	}
	return &Normalizer{
		table:     table,
		zohoLinkF: "https://projects.zoho.com/%s/item/%s",
	}
}

// Normalize resolves one raw row (header label → cell value) into a canonical
// entry. Headers are matched through NormalizeKey, each canonical field takes
// the first alias present with a non-empty value, and the fallback rules are
// applied exactly once afterwards. A field with no match stays at its zero
// value; that is not an error.
func (n *Normalizer) Normalize(row map[string]string) domain.TimesheetEntry {
	normalized := make(map[string]string, len(row))
	for header, value := range row {
		key := NormalizeKey(header)
		if key == "" {
			continue
		}
		if _, seen := normalized[key]; !seen || strings.TrimSpace(value) != "" {
			normalized[key] = value
		}
	}

	resolve := func(field string) string {
		for _, alias := range n.table[field] {
			if v, ok := normalized[NormalizeKey(alias)]; ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	entry := domain.TimesheetEntry{
		ItemID:      resolve(FieldItemID),
		ItemName:    resolve(FieldItemName),
		ItemDetail:  resolve(FieldItemDetail),
		ItemType:    resolve(FieldItemType),
		LogType:     resolve(FieldLogType),
		LogOwner:    resolve(FieldLogOwner),
		TeamName:    resolve(FieldTeamName),
		Epic:        resolve(FieldEpic),
		ReportedBy:  resolve(FieldReportedBy),
		Remarks:     resolve(FieldRemarks),
		ZohoLink:    resolve(FieldZohoLink),
		Application: resolve(FieldApplication),
		ProjectName: resolve(FieldProjectName),
		Status:      resolve(FieldStatus),

		LogHoursDecimal: ParseDecimal(resolve(FieldLogHoursDecimal)),
		EstimatedPoints: ParseDecimal(resolve(FieldEstimatedPoints)),
		ActualPoints:    ParseDecimal(resolve(FieldActualPoints)),

		LogDate:             ParseDate(resolve(FieldLogDate)),
		RequestedDate:       ParseDate(resolve(FieldRequestedDate)),
		StartDate:           ParseDate(resolve(FieldStartDate)),
		ReleaseDate:         ParseDate(resolve(FieldReleaseDate)),
		ExpectedStartDate:   ParseDate(resolve(FieldExpectedStartDate)),
		ExpectedReleaseDate: ParseDate(resolve(FieldExpectedReleaseDate)),
		ActualStartDate:     ParseDate(resolve(FieldActualStartDate)),
		ActualReleaseDate:   ParseDate(resolve(FieldActualReleaseDate)),
		CompletedOn:         ParseDate(resolve(FieldCompletedOn)),
	}

	n.applyFallbacks(&entry)
	return entry
}

// applyFallbacks fills canonical fields that remained empty after alias
// resolution, each rule conditioned on the source field being present.
func (n *Normalizer) applyFallbacks(e *domain.TimesheetEntry) {
	if e.Application == "" && e.ProjectName != "" {
		e.Application = e.ProjectName
	}
	if e.TeamName == "" && e.LogOwner != "" {
		e.TeamName = e.LogOwner
	}
	if e.ActualPoints == 0 && e.LogHoursDecimal != 0 {
		e.ActualPoints = e.LogHoursDecimal
	}
	if e.ExpectedStartDate == nil && e.StartDate != nil {
		e.ExpectedStartDate = e.StartDate
	}
	if e.ExpectedReleaseDate == nil && e.ReleaseDate != nil {
		e.ExpectedReleaseDate = e.ReleaseDate
	}
	if e.ActualStartDate == nil && e.StartDate != nil {
		e.ActualStartDate = e.StartDate
	}
	if e.ActualReleaseDate == nil {
		switch {
		case e.CompletedOn != nil:
			e.ActualReleaseDate = e.CompletedOn
		case e.ReleaseDate != nil:
			e.ActualReleaseDate = e.ReleaseDate
		}
	}
	if e.ZohoLink == "" && e.ItemID != "" && e.ProjectName != "" {
		e.ZohoLink = fmt.Sprintf(n.zohoLinkF, strings.ToLower(e.ProjectName), e.ItemID)
	}
}

// NormalizeRows pairs a header list with positional value rows and normalizes
// each row. Rows shorter than the header list are padded with empty cells;
// fully empty rows are skipped.
func (n *Normalizer) NormalizeRows(headers []string, rows [][]string) []domain.TimesheetEntry {
	entries := make([]domain.TimesheetEntry, 0, len(rows))
	for _, cells := range rows {
		if rowIsEmpty(cells) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		entries = append(entries, n.Normalize(row))
	}
	return entries
}

func rowIsEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
