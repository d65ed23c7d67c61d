package pkg

import (
	"encoding/csv"
	"fmt"
	"os"
)

// LoadGroupURLs reads group page URLs from a CSV file with a "GroupURL"
// column.
func LoadGroupURLs(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file %v", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("groups file is empty")
	}
	var urlIDX = -1
	header := records[0]
	for i, col := range header {
		if col == "GroupURL" {
			urlIDX = i
			break
		}
	}
	if urlIDX == -1 {
		return nil, fmt.Errorf("failed to find the GroupURL col in groups file")
	}
	var urls []string
	for _, row := range records[1:] {
		if len(row) > urlIDX && row[urlIDX] != "" {
			urls = append(urls, row[urlIDX])
		}
	}
	return urls, nil
}
