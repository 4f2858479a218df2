package assets

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"deckflow/internal/models"
)

// Manager serves deck styling assets and persona definitions. Assets load
// from a directory at startup and optionally hot-reload on change, so theme
// tweaks don't need a restart.
type Manager struct {
	dir string

	mu       sync.RWMutex
	baseCSS  string
	personas map[string]string

	watcher *fsnotify.Watcher
}

// personaFile is the on-disk shape of personas.yaml.
type personaFile struct {
	Personas map[string]string `yaml:"personas"`
}

// NewManager loads assets from dir. A missing directory is not an error:
// built-in defaults cover everything.
func NewManager(dir string) *Manager {
	m := &Manager{dir: dir, personas: map[string]string{}}
	m.reload()
	return m
}

// BaseCSS returns the shared slide stylesheet.
func (m *Manager) BaseCSS() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.baseCSS != "" {
		return m.baseCSS
	}
	return defaultBaseCSS
}

// Personas returns persona prompt overrides loaded from personas.yaml.
// Empty when no file exists.
func (m *Manager) Personas() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.personas))
	for k, v := range m.personas {
		out[k] = v
	}
	return out
}

// ThemeCSS renders the CSS custom properties for a deck's color theme.
func (m *Manager) ThemeCSS(theme models.ColorTheme) string {
	p := models.PaletteFor(theme)
	var b strings.Builder
	b.WriteString(":root {\n")
	fmt.Fprintf(&b, "  --deck-primary: %s;\n", p.Primary)
	fmt.Fprintf(&b, "  --deck-secondary: %s;\n", p.Secondary)
	fmt.Fprintf(&b, "  --deck-accent: %s;\n", p.Accent)
	fmt.Fprintf(&b, "  --deck-background: %s;\n", p.Background)
	fmt.Fprintf(&b, "  --deck-surface: %s;\n", p.Surface)
	fmt.Fprintf(&b, "  --deck-text: %s;\n", p.Text)
	b.WriteString("}\n")
	return b.String()
}

// DeckCSS assembles the full stylesheet for a deck: theme variables plus the
// base sheet.
func (m *Manager) DeckCSS(theme models.ColorTheme) string {
	return m.ThemeCSS(theme) + "\n" + m.BaseCSS()
}

func (m *Manager) reload() {
	baseCSS := ""
	if data, err := os.ReadFile(filepath.Join(m.dir, "base.css")); err == nil {
		baseCSS = string(data)
	}

	personas := map[string]string{}
	if data, err := os.ReadFile(filepath.Join(m.dir, "personas.yaml")); err == nil {
		var pf personaFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			log.Printf("⚠️ [ASSETS] Failed to parse personas.yaml: %v", err)
		} else {
			personas = pf.Personas
		}
	}

	m.mu.Lock()
	m.baseCSS = baseCSS
	m.personas = personas
	m.mu.Unlock()
}

// Watch starts hot-reloading assets on file changes. onReload, when not nil,
// runs after each reload so dependents can pick up new personas.
func (m *Manager) Watch(onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create asset watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch assets directory %s: %w", m.dir, err)
	}
	m.watcher = watcher

	log.Printf("👁️ [ASSETS] Watching %s for changes (hot-reload enabled)", m.dir)

	go func() {
		// Debounce rapid sequences of writes into one reload.
		var debounceTimer *time.Timer
		debounceDuration := 500 * time.Millisecond

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					log.Printf("🔄 [ASSETS] Detected changes in %s, reloading assets...", event.Name)
					m.reload()
					if onReload != nil {
						onReload()
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [ASSETS] Watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher if one is running.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// defaultBaseCSS is the built-in slide stylesheet used when no base.css
// asset is present. Slides render 16:9 with Bootstrap utilities on top.
const defaultBaseCSS = `
.slide {
  width: 1280px;
  height: 720px;
  overflow: hidden;
  background: var(--deck-background);
  color: var(--deck-text);
  font-family: "Segoe UI", system-ui, -apple-system, sans-serif;
  padding: 48px 64px;
  box-sizing: border-box;
}
.slide h1, .slide h2 {
  color: var(--deck-primary);
}
.slide .accent {
  color: var(--deck-accent);
}
.slide .card, .slide .surface {
  background: var(--deck-surface);
  border-radius: 12px;
}
.slide blockquote {
  border-left: 4px solid var(--deck-accent);
  padding-left: 1rem;
  font-style: italic;
}
`
