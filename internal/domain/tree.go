// Package domain defines the core entities of the Folllow application.
package domain

import (
	"regexp"
	"time"
)

// SlugPattern is the canonical shape of a tree slug: an @ followed by
// word characters. Length bounds are enforced separately (3..20 runes
// including the @).
var SlugPattern = regexp.MustCompile(`^@\w+$`)

const (
	SlugMinLen = 3
	SlugMaxLen = 20
	BioMaxLen  = 200
	URLMinLen  = 1
	URLMaxLen  = 160
)

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	if len(s) < SlugMinLen || len(s) > SlugMaxLen {
		return false
	}
	return SlugPattern.MatchString(s)
}

// SocialMedia identifies the platform a link points at. It drives which
// icon the public page renders next to the link.
type SocialMedia string

const (
	SocialTwitter   SocialMedia = "twitter"
	SocialInstagram SocialMedia = "instagram"
	SocialYoutube   SocialMedia = "youtube"
	SocialTiktok    SocialMedia = "tiktok"
	SocialGithub    SocialMedia = "github"
	SocialTwitch    SocialMedia = "twitch"
	SocialFacebook  SocialMedia = "facebook"
	SocialLinkedin  SocialMedia = "linkedin"
	SocialDiscord   SocialMedia = "discord"
	SocialWebsite   SocialMedia = "website"
)

// SocialMedias lists every supported platform.
var SocialMedias = []SocialMedia{
	SocialTwitter, SocialInstagram, SocialYoutube, SocialTiktok,
	SocialGithub, SocialTwitch, SocialFacebook, SocialLinkedin,
	SocialDiscord, SocialWebsite,
}

// Valid reports whether the value is one of the supported platforms.
func (s SocialMedia) Valid() bool {
	for _, v := range SocialMedias {
		if s == v {
			return true
		}
	}
	return false
}

// Theme names one of the page themes a creator can pick. The values
// match the stylesheet theme identifiers shipped with the public page.
type Theme string

const (
	ThemeLight     Theme = "light"
	ThemeDark      Theme = "dark"
	ThemeCupcake   Theme = "cupcake"
	ThemeSynthwave Theme = "synthwave"
	ThemeRetro     Theme = "retro"
	ThemeCyberpunk Theme = "cyberpunk"
	ThemeValentine Theme = "valentine"
	ThemeAqua      Theme = "aqua"
	ThemeForest    Theme = "forest"
	ThemeLuxury    Theme = "luxury"
	ThemeDracula   Theme = "dracula"
	ThemeNight     Theme = "night"
	ThemeCoffee    Theme = "coffee"
	ThemeWinter    Theme = "winter"
)

// Themes lists every selectable theme.
var Themes = []Theme{
	ThemeLight, ThemeDark, ThemeCupcake, ThemeSynthwave, ThemeRetro,
	ThemeCyberpunk, ThemeValentine, ThemeAqua, ThemeForest, ThemeLuxury,
	ThemeDracula, ThemeNight, ThemeCoffee, ThemeWinter,
}

// Valid reports whether the value is one of the selectable themes.
func (t Theme) Valid() bool {
	for _, v := range Themes {
		if t == v {
			return true
		}
	}
	return false
}

// Link is a single entry on a tree page. Position is the zero-based
// display order; the stored order is exactly what the owner submitted.
type Link struct {
	ID       string      `json:"id"`
	TreeID   string      `json:"-"`
	Position int         `json:"position"`
	Media    SocialMedia `json:"media"`
	URL      string      `json:"url"`
}

// Tree is a creator's public link-in-bio page. Slug is unique across
// the application and always carries the @ prefix.
type Tree struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Slug       string    `json:"slug"`
	Bio        string    `json:"bio"`
	Theme      Theme     `json:"theme"`
	ImageKey   string    `json:"image,omitempty"`
	AdsEnabled bool      `json:"ads_enabled"`
	Links      []Link    `json:"links"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
