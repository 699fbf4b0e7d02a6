// Package generation defines the boundary between the application core
// and external LLM services used to draft flashcards. The core depends
// only on the Generator interface; the gemini platform package provides
// the production implementation.
package generation
