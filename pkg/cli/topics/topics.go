// Package topics adds file-backed help topics to a cobra application.
// Topics are loaded from an fs.FS (typically an embed.FS shipped inside
// the binary) and resolved by `<app> help <topic>` before cobra's
// regular command help.
package topics

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Topic is one help page loaded from the topic filesystem.
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Renderer formats topic content for terminal display. The extension of
// the source file is passed so renderers can limit themselves to the
// formats they understand.
type Renderer interface {
	Render(content, ext string) string
}

// PlainRenderer returns content unchanged.
type PlainRenderer struct{}

func (PlainRenderer) Render(content, ext string) string { return content }

// Manager resolves help arguments against loaded topics before falling
// back to regular command help.
type Manager struct {
	topics       map[string]*Topic
	originalHelp func(*cobra.Command, []string)
	renderer     Renderer
}

var topicExtensions = []string{".md", ".txt"}

// Load reads every .md and .txt file under dir in fsys. Each topic is
// named after its base filename without the extension.
func Load(fsys fs.FS, dir string) (*Manager, error) {
	m := &Manager{
		topics:   make(map[string]*Topic),
		renderer: PlainRenderer{},
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read help topics: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if !supportedExtension(ext) {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read help topic %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		m.topics[name] = &Topic{Name: name, Ext: ext, Content: string(content)}
	}
	return m, nil
}

func supportedExtension(ext string) bool {
	for _, e := range topicExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SetRenderer replaces the renderer used for topic output.
func (m *Manager) SetRenderer(r Renderer) {
	if r != nil {
		m.renderer = r
	}
}

// Get retrieves a topic by name. Flag-style names (--foo) are looked up
// without their dashes.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	t, ok := m.topics[name]
	return t, ok
}

// Names returns all topic names sorted alphabetically.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install wires the manager into rootCmd. `<app> help <topic>` prints
// the topic, `<app> help topics` lists the available ones, and anything
// else falls through to regular command help.
func (m *Manager) Install(rootCmd *cobra.Command) {
	m.originalHelp = rootCmd.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range rootCmd.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				m.originalHelp(rootCmd, nil)
				return
			}
			if args[0] == "topics" {
				m.printTopicList(cmd, rootCmd.Name())
				return
			}
			if topic, ok := m.Get(args[0]); ok {
				cmd.Print(m.renderer.Render(topic.Content, topic.Ext))
				return
			}
			m.originalHelp(rootCmd, args)
		},
	}

	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "help" {
			rootCmd.RemoveCommand(cmd)
			break
		}
	}
	rootCmd.AddCommand(helpCmd)

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if topic, ok := m.Get(args[0]); ok {
				cmd.Print(m.renderer.Render(topic.Content, topic.Ext))
				return
			}
		}
		m.originalHelp(cmd, args)
	})
}

func (m *Manager) printTopicList(cmd *cobra.Command, appName string) {
	names := m.Names()
	if len(names) == 0 {
		cmd.Println("No help topics available.")
		return
	}
	cmd.Println("Available help topics:")
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Printf("\nUse '%s help <topic>' to read about a specific topic.\n", appName)
}
