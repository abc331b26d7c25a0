/*
Package locallang provides localized labels for templates.

Labels are grouped by language. The language "default" holds the base labels
that are used whenever a label is missing in the requested language. Labels
can be read from YAML documents or kept in a SQLite database through Store.
*/
package locallang
