// Package fixtures loads initial data after create-type migrations run.
package fixtures
