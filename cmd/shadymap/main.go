// Command shadymap serves the shady spots map API and provides offline tools
// for rendering and checking the community feed.
//
// Usage:
//
//	shadymap serve --config shadymap.yaml
//	shadymap render --out mapview.json
//	shadymap validate --feed data/feed.csv
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
