// Command moviemart builds the IMDB movie marts: it reads the raw extracts,
// stages them, builds the movies fact table and the actor and director
// dimensions, and replaces them in every configured sink.
//
//	moviemart -config configs/pipelines/imdb.json
//	moviemart -config configs/pipelines/imdb.toml -validate
//	moviemart -print-schema
//
// Exit status is 1 for configuration errors and 2 for failed runs.
package main

import (
	"os"

	// register every sink kind with the storage factory; the pipeline file
	// picks which ones are used.
	_ "moviemart/internal/storage/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
