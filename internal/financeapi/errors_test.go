package financeapi

import "testing"

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errors array", `{"errors":["a","b"],"message":"ignored"}`, "a, b"},
		{"errors array single", `{"errors":["Valor inválido"]}`, "Valor inválido"},
		{"errors object", `{"errors":{"amount":["must be positive","too small"],"dueDay":"out of range"}}`, "must be positive, too small, out of range"},
		{"errors object skips empty scalars", `{"errors":{"a":"","b":null,"c":["x"],"d":0,"e":false}}`, "x"},
		{"null items read as empty in arrays", `{"errors":["a",null,"b"]}`, "a, , b"},
		{"null items read as empty in object arrays", `{"errors":{"c":["x",null],"d":"y"}}`, "x, , y"},
		{"errors object keeps order", `{"errors":{"z":"last?","a":"first?"}}`, "last?, first?"},
		{"empty errors object", `{"errors":{},"message":"fallback"}`, ""},
		{"empty errors array", `{"errors":[],"message":"fallback"}`, ""},
		{"message", `{"message":"Despesa duplicada"}`, "Despesa duplicada"},
		{"errors string uses message", `{"errors":"nope","message":"Despesa duplicada"}`, "Despesa duplicada"},
		{"empty message", `{"message":""}`, ""},
		{"nothing", `{}`, ""},
		{"not json", `Internal Server Error`, ""},
		{"empty body", ``, ""},
		{"json array body", `["a"]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("ExtractMessage(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
