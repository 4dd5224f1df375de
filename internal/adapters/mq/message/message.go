// Package message defines the requests and responses that cross the boundary
// between a dispatcher and its compute engine, and the envelope that carries
// them.
//
// Every crossing is a copy: payloads travel msgpack-encoded inside an
// Envelope, so the sender and receiver never share a product map.
package message

import (
	"strings"

	"github.com/okian/storefront/internal/domain/product"
)

// Type tags an envelope with the operation it requests or answers.
type Type string

// Request types.
const (
	TypeFilterProducts      Type = "FILTER_PRODUCTS"
	TypeSortProducts        Type = "SORT_PRODUCTS"
	TypeCalculateStatistics Type = "CALCULATE_STATISTICS"
)

// Response types.
const (
	TypeFilterProductsDone      Type = "FILTER_PRODUCTS_DONE"
	TypeSortProductsDone        Type = "SORT_PRODUCTS_DONE"
	TypeCalculateStatisticsDone Type = "CALCULATE_STATISTICS_DONE"
)

const doneSuffix = "_DONE"

// Done returns the response tag answering t.
func (t Type) Done() Type { return t + doneSuffix }

// IsResponse reports whether t is a response tag.
func (t Type) IsResponse() bool { return strings.HasSuffix(string(t), doneSuffix) }

// Request is one of FilterRequest, SortRequest or StatisticsRequest.
type Request interface {
	Type() Type
	isRequest()
}

// FilterRequest asks for the products matching Criteria.
type FilterRequest struct {
	Products []product.Product `msgpack:"products" json:"products"`
	Criteria product.Criteria  `msgpack:"criteria" json:"criteria"`
}

// SortRequest asks for Products ordered by SortKey.
type SortRequest struct {
	Products []product.Product `msgpack:"products" json:"products"`
	SortKey  product.SortKey   `msgpack:"sortKey" json:"sortKey"`
}

// StatisticsRequest asks for aggregate statistics over Products.
type StatisticsRequest struct {
	Products []product.Product `msgpack:"products" json:"products"`
}

func (FilterRequest) Type() Type     { return TypeFilterProducts }
func (SortRequest) Type() Type       { return TypeSortProducts }
func (StatisticsRequest) Type() Type { return TypeCalculateStatistics }

func (FilterRequest) isRequest()     {}
func (SortRequest) isRequest()       {}
func (StatisticsRequest) isRequest() {}

// Response is one of FilterResult, SortResult or StatisticsResult.
type Response interface {
	Type() Type
	payload() any
}

// FilterResult carries the filtered products.
type FilterResult struct {
	Products []product.Product
}

// SortResult carries the sorted products.
type SortResult struct {
	Products []product.Product
}

// StatisticsResult carries the aggregate report.
type StatisticsResult struct {
	Report product.Report
}

func (FilterResult) Type() Type     { return TypeFilterProductsDone }
func (SortResult) Type() Type       { return TypeSortProductsDone }
func (StatisticsResult) Type() Type { return TypeCalculateStatisticsDone }

func (r FilterResult) payload() any     { return r.Products }
func (r SortResult) payload() any       { return r.Products }
func (r StatisticsResult) payload() any { return r.Report }
