package config

import (
	"fmt"

	"github.com/atlanticdynamic/urlrelay/internal/fancy"
)

// maxValueWidth keeps long origins and socket paths on one tree line.
const maxValueWidth = 60

func short(s string) string {
	return fancy.TruncateString(s, maxValueWidth)
}

// String returns a pretty-printed tree representation of the config
func (c *Config) String() string {
	return ConfigTree(c)
}

// ConfigTree converts a Config struct into a rendered tree string
func ConfigTree(cfg *Config) string {
	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render("urlrelay config"))

	t.Child(fancy.BranchNode("Product", "").
		Child("URL protocol: " + fancy.SchemeText(cfg.Product.URLProtocol)))

	deployment := fancy.BranchNode("Deployment", "").
		Child("Mode: " + fancy.ModeText(cfg.Deployment.Mode.String()))
	if cfg.Deployment.Origin != "" {
		deployment.Child("Origin: " + fancy.EndpointText(short(cfg.Deployment.Origin)))
	}
	if n := len(cfg.Deployment.Extensions); n > 0 {
		exts := fancy.BranchNode("Extensions", fmt.Sprintf("(%d)", n))
		for _, id := range cfg.Deployment.Extensions {
			exts.Child(fancy.ExtensionText(short(id)))
		}
		deployment.Child(exts)
	}
	t.Child(deployment)

	if cfg.IsWeb() {
		t.Child(fancy.BranchNode("Poller", "").
			Child(fmt.Sprintf("Interval: %s", cfg.Poller.Interval)))
	}

	t.Child(fancy.BranchNode("Mailbox", "").
		Child("Listen: " + fancy.EndpointText(short(cfg.Mailbox.Listen))).
		Child(fmt.Sprintf("Capacity: %d", cfg.Mailbox.Capacity)).
		Child(fmt.Sprintf("TTL: %s", cfg.Mailbox.TTL)))

	if cfg.Bridge.Enabled() {
		t.Child(fancy.BranchNode("Bridge", "").
			Child("Listen: " + fancy.EndpointText(short(cfg.Bridge.Listen))).
			Child("Extension host: " + fancy.EndpointText(short(cfg.Bridge.ExtHost))))
	}

	t.Child(fancy.BranchNode("Logging", "").
		Child("Format: " + cfg.Logging.Format.String()).
		Child("Level: " + cfg.Logging.Level.String()).
		Child("Output: " + short(cfg.Logging.Output)))

	return t.String()
}
