// Package model holds the parsed project data that resolution operates on:
// components and build targets.
package model
