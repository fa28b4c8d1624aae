package schema

import "fmt"

// Виды нарушений схемы документа.
const (
	ViolationUnknownNodeType = "unknown node type"
	ViolationUnknownMarkType = "unknown mark type"
	ViolationInlineAtBlock   = "inline node at block position"
	ViolationBlockAtInline   = "block node at inline position"
	ViolationInvalidLevel    = "invalid heading level"
	ViolationInvalidRoot     = "invalid document root"
)

// SchemaError описывает нарушение схемы при парсинге дерева нод.
// Любое нарушение фатально для загрузки: документ с такой ошибкой считается
// незагружаемым и никогда не применяется частично.
type SchemaError struct {
	Kind     string
	NodeType string
}

func (e *SchemaError) Error() string {
	if e.NodeType == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.NodeType)
}

func violation(kind string, nodeType string) *SchemaError {
	return &SchemaError{Kind: kind, NodeType: nodeType}
}
