package records

import (
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// OrgRecord maps an AS to its organization id (as2org "aut" lines)
type OrgRecord struct {
	ASN   topology.ASN
	OrgID string
}

// OrgNameRecord maps an organization id to its name
type OrgNameRecord struct {
	OrgID string
	Name  string
}

func parseASN(field, name string) (topology.ASN, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0, &ParseError{Field: name, Cause: err}
	}
	return topology.ASN(v), nil
}

func parseInt(field, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, &ParseError{Field: name, Cause: err}
	}
	return v, nil
}

// ScanClassifications reads "as|source|class" lines
func ScanClassifications(r io.Reader, opts Options, fn func(topology.ClassificationRecord)) (Stats, error) {
	return scanLines(r, StreamClassification, opts, func(line string) error {
		fields, err := splitFields(line, 3)
		if err != nil {
			return err
		}
		asn, err := parseASN(fields[0], "as")
		if err != nil {
			return err
		}
		fn(topology.ClassificationRecord{
			ASN:            asn,
			Classification: topology.Classification(strings.TrimSpace(fields[2])),
		})
		return nil
	})
}

// ScanRelationships reads "as_a|as_b|code" lines
func ScanRelationships(r io.Reader, opts Options, fn func(topology.RelationshipRecord)) (Stats, error) {
	return scanLines(r, StreamRelationships, opts, func(line string) error {
		fields, err := splitFields(line, 3)
		if err != nil {
			return err
		}
		a, err := parseASN(fields[0], "as_a")
		if err != nil {
			return err
		}
		b, err := parseASN(fields[1], "as_b")
		if err != nil {
			return err
		}
		code, err := parseInt(fields[2], "relationship")
		if err != nil {
			return err
		}
		fn(topology.RelationshipRecord{A: a, B: b, Code: topology.RelationshipCode(code)})
		return nil
	})
}

// ScanPrefixes reads whitespace-separated "prefix length as" lines. The AS
// field may hold a multi-origin set ("a_b") or an AS set ("a,b"); the first
// AS of either is taken as owner.
func ScanPrefixes(r io.Reader, stream Stream, opts Options, fn func(topology.PrefixRecord)) (Stats, error) {
	return scanLines(r, stream, opts, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return ErrTooFewFields
		}
		length, err := parseInt(fields[1], "length")
		if err != nil {
			return err
		}
		ownerField := strings.Split(strings.Split(fields[2], "_")[0], ",")[0]
		owner, err := parseASN(ownerField, "as")
		if err != nil {
			return err
		}
		fn(topology.PrefixRecord{Prefix: fields[0], Length: length, Owner: owner})
		return nil
	})
}

// ScanAS2Org reads "aut|changed|aut_name|org_id|opaque_id|source" lines.
// Organization lines of a combined file fail the AS tokenization and are
// skipped.
func ScanAS2Org(r io.Reader, opts Options, fn func(OrgRecord)) (Stats, error) {
	return scanLines(r, StreamAS2Org, opts, func(line string) error {
		fields, err := splitFields(line, 4)
		if err != nil {
			return err
		}
		asn, err := parseASN(fields[0], "aut")
		if err != nil {
			return err
		}
		fn(OrgRecord{ASN: asn, OrgID: strings.TrimSpace(fields[3])})
		return nil
	})
}

// ScanOrganizations reads "org_id|changed|name|country|source" lines
func ScanOrganizations(r io.Reader, opts Options, fn func(OrgNameRecord)) (Stats, error) {
	return scanLines(r, StreamOrganizations, opts, func(line string) error {
		fields, err := splitFields(line, 3)
		if err != nil {
			return err
		}
		fn(OrgNameRecord{OrgID: strings.TrimSpace(fields[0]), Name: fields[2]})
		return nil
	})
}

// ReadSources scans the four graph-building streams into memory
func ReadSources(classification, relationships, v4, v6 io.Reader, opts Options) (topology.Sources, map[Stream]Stats, error) {
	var src topology.Sources
	stats := make(map[Stream]Stats, 4)

	s, err := ScanClassifications(classification, opts, func(rec topology.ClassificationRecord) {
		src.Classifications = append(src.Classifications, rec)
	})
	stats[StreamClassification] = s
	if err != nil {
		return src, stats, err
	}

	s, err = ScanRelationships(relationships, opts, func(rec topology.RelationshipRecord) {
		src.Relationships = append(src.Relationships, rec)
	})
	stats[StreamRelationships] = s
	if err != nil {
		return src, stats, err
	}

	s, err = ScanPrefixes(v4, StreamPrefix2ASv4, opts, func(rec topology.PrefixRecord) {
		src.PrefixesV4 = append(src.PrefixesV4, rec)
	})
	stats[StreamPrefix2ASv4] = s
	if err != nil {
		return src, stats, err
	}

	s, err = ScanPrefixes(v6, StreamPrefix2ASv6, opts, func(rec topology.PrefixRecord) {
		src.PrefixesV6 = append(src.PrefixesV6, rec)
	})
	stats[StreamPrefix2ASv6] = s
	return src, stats, err
}
