package domain

type Category string

const (
	CategoryDuplicate       Category = "Duplicate"
	CategorySimilarity      Category = "Similarity"
	CategoryPlaceholder     Category = "Placeholder"
	CategoryMissingField    Category = "MissingField"
	CategoryTypeMismatch    Category = "TypeMismatch"
	CategoryLogicMismatch   Category = "LogicMismatch"
	CategorySalaryAnomaly   Category = "SalaryAnomaly"
	CategoryLocationAnomaly Category = "LocationAnomaly"
)

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityWarning  Severity = "Warning"
	SeverityInfo     Severity = "Info"
)

type QualityIssue struct {
	Category  Category `json:"category"`
	Severity  Severity `json:"severity"`
	Subject   string   `json:"subject"`
	RoleIndex *int     `json:"role_index,omitempty"`
	Message   string   `json:"message"`
}

// RoleRef is a helper for building issues that point at one role.
func RoleRef(i int) *int { return &i }
