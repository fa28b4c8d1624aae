package schema

// wireDocument представляет корневой документ в JSON представлении.
type wireDocument struct {
	Type    string     `json:"type"`
	Content []wireNode `json:"content,omitempty"`
}

// wireNode представляет узел в JSON дереве документа.
// Используется универсальная структура с map для атрибутов для поддержки различных типов нод.
type wireNode struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []wireNode             `json:"content,omitempty"`
	Marks   []wireMark             `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// wireMark представляет форматирование текста (bold, italic, link и т.д.).
type wireMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}
