package present

import (
	"strconv"
	"strings"
)

// LabelMap maps category keys to display names.
type LabelMap map[string]string

// StatusLabels names ServiceNow incident states.
var StatusLabels = LabelMap{
	"1": "NEW",
	"2": "In Progress",
	"3": "ON HOLD",
	"6": "Resolved",
	"7": "Closed",
}

// Label returns the display name for key. Numeric keys match regardless of
// formatting, so "6", "6.0" and " 6" all resolve.
func (m LabelMap) Label(key string) (string, bool) {
	if label, ok := m[key]; ok {
		return label, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return "", false
	}
	label, ok := m[strconv.FormatFloat(f, 'f', -1, 64)]
	return label, ok
}
