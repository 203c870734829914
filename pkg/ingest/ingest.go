// Package ingest parses the two whitespace-table file formats named in
// spec §6 ("Parsing of topology and communication files ... treated as
// external collaborators"): the topology file (inter-switch links) and the
// communication file (per-app flow membership). Both formats are small,
// line-oriented, and have no existing third-party parser anywhere in the
// example pack, so this package is plain standard-library bufio/strings —
// see DESIGN.md for why no dependency was pulled in to cover it.
package ingest

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func ingestError(format string, args ...interface{}) error {
	return errors.Errorf("ingest: "+format, args...)
}

// ParseTopologyFile reads whitespace-separated rows of
// "src_core src_port dst_core dst_port" and returns the inter-switch links
// they describe, in file order. Blank lines and lines starting with '#'
// are skipped.
func ParseTopologyFile(r io.Reader) ([]topology.Link, error) {
	var links []topology.Link
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields, ok := dataFields(scanner.Text())
		if !ok {
			continue
		}
		if len(fields) != 4 {
			return nil, ingestError("line %d: expected 4 fields (src_core src_port dst_core dst_port), got %d", lineNo, len(fields))
		}
		srcPort, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, ingestError("line %d: src_port %q is not an integer", lineNo, fields[1])
		}
		dstPort, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, ingestError("line %d: dst_port %q is not an integer", lineNo, fields[3])
		}
		if fields[0] == fields[2] {
			return nil, ingestError("line %d: src_core and dst_core must differ (got %q twice)", lineNo, fields[0])
		}
		links = append(links, topology.Link{
			CoreA: fields[0], PortA: srcPort,
			CoreB: fields[2], PortB: dstPort,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "ingest: reading topology file")
	}
	return links, nil
}

// ParseCommunicationFile reads whitespace-separated rows of
// "src_vNode dst_vNode flow_label" and returns the app spec they describe:
// vNode indices must already be dense (0-based, contiguous within the
// app); flow_label is an opaque token, mapped 1-to-1 onto dense internal
// flow membership in first-seen order, per spec §6's "Labels are opaque,
// mapped 1-to-1 onto internal dense IDs during ingest."
func ParseCommunicationFile(r io.Reader) (allocator.AppSpec, error) {
	var spec allocator.AppSpec
	flowIndex := make(map[string]int)
	maxVNode := -1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields, ok := dataFields(scanner.Text())
		if !ok {
			continue
		}
		if len(fields) != 3 {
			return allocator.AppSpec{}, ingestError("line %d: expected 3 fields (src_vNode dst_vNode flow_label), got %d", lineNo, len(fields))
		}
		src, err := strconv.Atoi(fields[0])
		if err != nil {
			return allocator.AppSpec{}, ingestError("line %d: src_vNode %q is not an integer", lineNo, fields[0])
		}
		dst, err := strconv.Atoi(fields[1])
		if err != nil {
			return allocator.AppSpec{}, ingestError("line %d: dst_vNode %q is not an integer", lineNo, fields[1])
		}
		label := fields[2]

		idx, seen := flowIndex[label]
		if !seen {
			idx = len(spec.Flows)
			flowIndex[label] = idx
			spec.Flows = append(spec.Flows, allocator.FlowSpec{})
		}
		spec.Flows[idx].Pairs = append(spec.Flows[idx].Pairs, allocator.PairSpec{Src: src, Dst: dst})

		if src > maxVNode {
			maxVNode = src
		}
		if dst > maxVNode {
			maxVNode = dst
		}
	}
	if err := scanner.Err(); err != nil {
		return allocator.AppSpec{}, errors.Wrap(err, "ingest: reading communication file")
	}
	spec.NumVNodes = maxVNode + 1
	return spec, nil
}

// dataFields splits a line on whitespace and reports whether it carries
// any data (false for blank lines and '#'-prefixed comments).
func dataFields(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, false
	}
	return strings.Fields(trimmed), true
}
