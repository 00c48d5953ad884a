// Package ollama asks a locally running Ollama server to pull grant fields
// out of page text. It implements extract.Model.
package ollama
