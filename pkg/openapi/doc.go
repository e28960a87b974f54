// Package openapi derives parameter field schemas from the JSON schema a
// service plan publishes for its create parameters. Both full OpenAPI 3
// documents and bare JSON schema objects are accepted; kin-openapi does the
// decoding and reference resolution.
package openapi
