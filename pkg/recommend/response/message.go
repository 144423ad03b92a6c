// Package response defines the outbound messages a turn produces. Rendering
// them on a concrete chat platform is the delivery adapter's job.
package response

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fashion-recommender-be/pkg/store"
)

const (
	MaxGalleryItems  = 5
	MaxCaptionRunes  = 1024
	DefaultImageURL  = "https://upload.wikimedia.org/wikipedia/commons/1/14/No_Image_Available.jpg"
	truncationSuffix = "..."
)

type Kind string

const (
	KindText    Kind = "text"
	KindPhoto   Kind = "photo"
	KindGallery Kind = "gallery"
)

type GalleryItem struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type OutboundMessage struct {
	Kind     Kind          `json:"kind"`
	Text     string        `json:"text,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
	Caption  string        `json:"caption,omitempty"`
	Items    []GalleryItem `json:"items,omitempty"`
}

func Text(text string) OutboundMessage {
	return OutboundMessage{Kind: KindText, Text: text}
}

func Textf(format string, args ...interface{}) OutboundMessage {
	return Text(fmt.Sprintf(format, args...))
}

func Photo(imageURL, caption string) OutboundMessage {
	return OutboundMessage{Kind: KindPhoto, ImageURL: imageOrDefault(imageURL), Caption: TruncateCaption(caption)}
}

// Gallery keeps the first MaxGalleryItems items.
func Gallery(items []GalleryItem) OutboundMessage {
	if len(items) > MaxGalleryItems {
		items = items[:MaxGalleryItems]
	}
	out := make([]GalleryItem, len(items))
	for i, item := range items {
		out[i] = GalleryItem{ImageURL: imageOrDefault(item.ImageURL), Caption: TruncateCaption(item.Caption)}
	}
	return OutboundMessage{Kind: KindGallery, Items: out}
}

// ProductGallery captions every product with its display name and, when
// descriptions has a non-empty entry at the same position, that description.
func ProductGallery(products []store.Product, descriptions []string) OutboundMessage {
	items := make([]GalleryItem, len(products))
	for i, p := range products {
		caption := p.DisplayName
		if i < len(descriptions) && descriptions[i] != "" {
			caption += "\n" + descriptions[i]
		}
		items[i] = GalleryItem{ImageURL: p.ImageURL, Caption: caption}
	}
	return Gallery(items)
}

// ProductPhoto shows one product with its name and a description below it.
func ProductPhoto(p store.Product, description string) OutboundMessage {
	caption := p.DisplayName
	if description != "" {
		caption += "\n" + description
	}
	return Photo(p.ImageURL, caption)
}

// TruncateCaption cuts caption to MaxCaptionRunes runes.
func TruncateCaption(caption string) string {
	if utf8.RuneCountInString(caption) <= MaxCaptionRunes {
		return caption
	}
	runes := []rune(caption)
	return string(runes[:MaxCaptionRunes-len(truncationSuffix)]) + truncationSuffix
}

func imageOrDefault(url string) string {
	if strings.TrimSpace(url) == "" {
		return DefaultImageURL
	}
	return url
}
