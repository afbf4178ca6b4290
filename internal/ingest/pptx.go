package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// parsePptx extracts the text runs of every slide, in slide order.
func parsePptx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pptx: %w", err)
	}

	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].Name < slides[j].Name })

	var sb strings.Builder
	for _, slide := range slides {
		if slide.UncompressedSize64 > officeXMLMax {
			continue
		}
		if err := appendSlideText(&sb, slide); err != nil {
			return "", err
		}
	}

	return tidyParagraphs(sb.String()), nil
}

func appendSlideText(sb *strings.Builder, slide *zip.File) error {
	rc, err := slide.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", slide.Name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, int64(officeXMLMax)))
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", slide.Name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	sb.WriteByte('\n')
	return nil
}
