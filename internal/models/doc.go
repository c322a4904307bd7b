// Package models holds the plain data types shared by the service, handler
// and CLI layers.
package models
