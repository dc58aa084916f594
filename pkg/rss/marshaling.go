package rss

import (
	"encoding/xml"
)

func (g *GUID) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if g.ID == "" {
		return nil
	}

	if g.IsPermaLink != nil {
		value := "true"
		if !*g.IsPermaLink {
			value = "false"
		}

		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "isPermaLink"},
			Value: value,
		})
	}

	return encodeText(e, start, g.ID)
}

func (d *Date) MarshalXML(encoder *xml.Encoder, start xml.StartElement) error {
	if d.IsZero() {
		return nil
	}
	return encodeText(encoder, start, d.UTC().Format("Mon, 02 Jan 2006 15:04:05")+" GMT")
}

func encodeText(encoder *xml.Encoder, start xml.StartElement, text string) error {
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}

	if err := encoder.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}

	return encoder.EncodeToken(xml.EndElement{Name: start.Name})
}
