// Package words provides the embedded word lists the game draws its secret
// words from, keyed by language and category.
package words

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed data/*.json
var files embed.FS

// DefaultLanguage is used when a client starts a game without naming one.
const DefaultLanguage = "en"

type wordList map[string][]string // category -> words

var (
	once  sync.Once
	lists map[string]wordList
)

func load() {
	lists = make(map[string]wordList)
	entries, err := files.ReadDir("data")
	if err != nil {
		panic(fmt.Sprintf("words: read embedded data: %v", err))
	}
	for _, e := range entries {
		raw, err := files.ReadFile("data/" + e.Name())
		if err != nil {
			panic(fmt.Sprintf("words: read %s: %v", e.Name(), err))
		}
		var wl wordList
		if err := json.Unmarshal(raw, &wl); err != nil {
			panic(fmt.Sprintf("words: parse %s: %v", e.Name(), err))
		}
		lang := e.Name()[:len(e.Name())-len(".json")]
		lists[lang] = wl
	}
}

// normalize falls back to the default language for unknown codes.
func normalize(lang string) string {
	once.Do(load)
	if _, ok := lists[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// Categories returns the sorted category names for a language. Unknown
// languages fall back to the default language.
func Categories(lang string) []string {
	lang = normalize(lang)
	cats := make([]string, 0, len(lists[lang]))
	for c := range lists[lang] {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// ForCategory returns the word list for a category, or nil when the
// category does not exist in that language.
func ForCategory(lang, category string) []string {
	lang = normalize(lang)
	return lists[lang][category]
}

// PickCategory returns the given category when it exists, or draws one
// uniformly with the provided rand source.
func PickCategory(lang, category string, rand func() float64) string {
	lang = normalize(lang)
	if _, ok := lists[lang][category]; ok {
		return category
	}
	cats := Categories(lang)
	i := int(rand() * float64(len(cats)))
	if i >= len(cats) {
		i = len(cats) - 1
	}
	return cats[i]
}
