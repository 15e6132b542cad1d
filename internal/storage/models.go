package storage

type Cost struct {
	ID          int64
	Sum         float64
	Currency    string
	Category    string
	Description string
	Date        string
	Year        int64
	Month       int64
}

type Setting struct {
	Key   string
	Value string
}
