// Package domain defines the core business entities of the annotation
// platform: users, music files, tagging questions, tagging tasks and their
// records, together with the validation rules and the task state machine
// that govern them.
package domain
