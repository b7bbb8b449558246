// Package registry discovers which configured apps use migrations.
package registry
