package topology

import (
	"math"
	"strconv"
)

// ASN is an autonomous system number. Values are taken as-is from the input
// datasets; no range check is applied.
type ASN int64

// String returns the conventional "AS<number>" rendering
func (a ASN) String() string {
	return "AS" + strconv.FormatInt(int64(a), 10)
}

// Family identifies the address family of a prefix
type Family uint8

const (
	IPv4 Family = iota
	IPv6
)

// String returns the string representation of an address family
func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// Bits returns the address width of the family
func (f Family) Bits() int {
	if f == IPv6 {
		return 128
	}
	return 32
}

// Classification is the AS type tag from the classification dataset
type Classification string

const (
	ClassUnset         Classification = ""
	ClassContent       Classification = "Content"
	ClassTransitAccess Classification = "Transit/Access"
	ClassEnterprise    Classification = "Enterprise"
)

// Known reports whether c is one of the taxonomy values
func (c Classification) Known() bool {
	switch c {
	case ClassContent, ClassTransitAccess, ClassEnterprise:
		return true
	}
	return false
}

// Prefix is an announced address block owned by an AS
type Prefix struct {
	Address string `json:"prefix"`
	Length  int    `json:"length"`
	Family  Family `json:"family"`
}

// AddressCount returns 2^(bits-length) for the prefix family.
// Out-of-range lengths are not rejected; the float result simply grows or
// shrinks accordingly.
func (p Prefix) AddressCount() float64 {
	return math.Ldexp(1, p.Family.Bits()-p.Length)
}

// Sources holds the four tokenized record streams the graph is built from
type Sources struct {
	Classifications []ClassificationRecord
	Relationships   []RelationshipRecord
	PrefixesV4      []PrefixRecord
	PrefixesV6      []PrefixRecord
}

// ClassificationRecord tags an AS with a classification
type ClassificationRecord struct {
	ASN            ASN
	Classification Classification
}

// RelationshipCode is the relationship field of an AS relationship record
type RelationshipCode int

const (
	// ProviderToCustomer marks the first AS as provider of the second
	ProviderToCustomer RelationshipCode = -1
	// PeerToPeer marks a settlement-free peering
	PeerToPeer RelationshipCode = 0
)

// RelationshipRecord is a single AS relationship line
type RelationshipRecord struct {
	A    ASN
	B    ASN
	Code RelationshipCode
}

// PrefixRecord maps a prefix to its owning AS
type PrefixRecord struct {
	Prefix string
	Length int
	Owner  ASN
}
