package oht

import (
	"encoding/xml"
	"fmt"

	"github.com/revenuewire/translation/internal/provider"
)

// bundle is the XML resource document uploaded to OneHourTranslation: one
// <t> entry per queue item with the queue id embedded as an attribute, so
// translated entries can be mapped back after the human round-trip.
type bundle struct {
	XMLName        xml.Name      `xml:"translations"`
	ID             string        `xml:"id,attr"`
	SourceLanguage string        `xml:"source_language,attr"`
	TargetLanguage string        `xml:"target_language,attr"`
	Entries        []bundleEntry `xml:"t"`
}

type bundleEntry struct {
	ID   string `xml:"id,attr"`
	Text string `xml:",cdata"`
}

// EncodeBundle serializes a submission into the OHT resource document.
func EncodeBundle(projectID, sourceLang, targetLang string, items []provider.SubmissionItem) ([]byte, error) {
	doc := bundle{
		ID:             projectID,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Entries:        make([]bundleEntry, 0, len(items)),
	}
	for _, item := range items {
		doc.Entries = append(doc.Entries, bundleEntry{ID: item.ItemID, Text: item.Text})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("oht: encode bundle: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// DecodeBundle parses a translated resource document back into texts keyed
// by queue item id. Entries without an id attribute are dropped.
func DecodeBundle(data []byte) (map[string]string, error) {
	var doc bundle
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("oht: decode bundle: %w", err)
	}

	results := make(map[string]string, len(doc.Entries))
	for _, entry := range doc.Entries {
		if entry.ID == "" {
			continue
		}
		results[entry.ID] = entry.Text
	}
	return results, nil
}
