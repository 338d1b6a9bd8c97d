package links

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes extracted links to a JSON file so a later batch run can
// work from them without re-crawling.
func Save(path string, pl *PageLinks) error {
	data, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("write links file: %w", err)
	}
	return nil
}

// Load reads a previously saved links file.
func Load(path string) (*PageLinks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	var pl PageLinks
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("decode links file: %w", err)
	}
	return &pl, nil
}
