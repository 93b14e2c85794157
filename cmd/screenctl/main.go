// Command screenctl runs the extraction and analysis pipelines against local
// files, and prints signed cloud OCR headers for debugging.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
