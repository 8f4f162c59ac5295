package model

import "time"

// Resource holds the fields every versioned platform resource carries.
type Resource struct {
	ID             string    `json:"id"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// Versioned is implemented by resources that can be updated or deleted.
type Versioned interface {
	ResourceID() string
	ResourceVersion() int64
}

// ResourceID implements Versioned.
func (r Resource) ResourceID() string { return r.ID }

// ResourceVersion implements Versioned.
func (r Resource) ResourceVersion() int64 { return r.Version }

// LocalizedString maps a language tag to a translation.
type LocalizedString map[string]string

// Get returns the translation for lang, if any.
func (l LocalizedString) Get(lang string) (string, bool) {
	v, ok := l[lang]
	return v, ok
}

// LocalizedOf returns a LocalizedString with one translation.
func LocalizedOf(lang, value string) LocalizedString {
	return LocalizedString{lang: value}
}
