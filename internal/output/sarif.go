package output

import (
	"encoding/json"
	"io"

	"github.com/envcheck/envcheck/internal/diag"
)

// SARIFVersion is the SARIF schema version.
const SARIFVersion = "2.1.0"

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

// SARIFLog is the top-level SARIF structure.
type SARIFLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema,omitempty"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the tool's identity and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes one rule reported by the driver.
type SARIFRule struct {
	ID                   string             `json:"id"`
	ShortDescription     SARIFMessage       `json:"shortDescription"`
	DefaultConfiguration SARIFConfiguration `json:"defaultConfiguration"`
}

// SARIFConfiguration holds the default level of a rule.
type SARIFConfiguration struct {
	Level string `json:"level"`
}

// SARIFResult is a single finding.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level,omitempty"` // error, warning, note
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations,omitempty"`
}

// SARIFMessage contains the finding's text.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation describes a file location.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation describes a file path.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes a span within a file.
type SARIFRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.Error:
		return "error"
	case diag.Warning:
		return "warning"
	default:
		return "note"
	}
}

// defaultSeverity is the severity each rule reports before config overrides
var defaultSeverity = map[diag.RuleID]diag.Severity{
	diag.E001: diag.Error,
	diag.E002: diag.Error,
	diag.W001: diag.Warning,
	diag.W002: diag.Warning,
	diag.W003: diag.Warning,
	diag.W004: diag.Warning,
	diag.W005: diag.Warning,
	diag.W006: diag.Info,
}

// NewSARIFLog builds a log with a single run holding diags
func NewSARIFLog(diags []diag.Diagnostic, version string) *SARIFLog {
	driver := SARIFDriver{
		Name:           "envcheck",
		Version:        version,
		InformationURI: "https://github.com/envcheck/envcheck",
	}
	for _, id := range diag.AllRules() {
		driver.Rules = append(driver.Rules, SARIFRule{
			ID:                   id.String(),
			ShortDescription:     SARIFMessage{Text: id.Description()},
			DefaultConfiguration: SARIFConfiguration{Level: sarifLevel(defaultSeverity[id])},
		})
	}

	results := make([]SARIFResult, 0, len(diags))
	for _, d := range diags {
		loc := SARIFLocation{
			PhysicalLocation: SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: d.Path},
			},
		}
		if d.HasLine() {
			loc.PhysicalLocation.Region = &SARIFRegion{StartLine: d.Line}
		}
		results = append(results, SARIFResult{
			RuleID:    d.Rule.String(),
			Level:     sarifLevel(d.Severity),
			Message:   SARIFMessage{Text: d.Message},
			Locations: []SARIFLocation{loc},
		})
	}

	return &SARIFLog{
		Version: SARIFVersion,
		Schema:  sarifSchema,
		Runs:    []SARIFRun{{Tool: SARIFTool{Driver: driver}, Results: results}},
	}
}

func writeSARIF(w io.Writer, diags []diag.Diagnostic, version string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSARIFLog(diags, version))
}
