package student

// Headers are the column labels used for every tabular rendering and export.
var Headers = []string{"Name", "Age", "Email", "Course"}

// Row returns r's cells in Headers order.
func (r Record) Row() []any {
	return []any{r.Name, r.Age, r.Email, r.Course}
}

// Rows returns one Row per record, in order.
func Rows(records []Record) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}
