package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# coverart Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: " + envPrefix + "_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	generateBackendSection(&content, cmd)
	generateArtworkSection(&content, cmd)
	generateServerSection(&content, cmd)
	generateLoggingSection(&content, cmd)

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return f.DefValue
	}
	return ""
}

func writeSetting(content *strings.Builder, cmd *cobra.Command, flagName, description string) {
	def := getDefaultValueString(cmd, flagName)
	fmt.Fprintf(content, "%s=%s  # %s (default: %s)\n", flagToEnvVar(flagName), def, description, def)
}

func writeSectionHeader(content *strings.Builder, title string, flags ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# " + title + "\n")
	content.WriteString("# -----------------------------------------------------------------------------\n")
	content.WriteString("# CLI: --" + strings.Join(flags, ", --") + "\n")
}

func generateBackendSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Site API", "backend-url", "backend-timeout-secs")
	writeSetting(content, cmd, "backend-url", "Base URL of the releases/shows API")
	writeSetting(content, cmd, "backend-timeout-secs", "Request timeout in seconds")
	content.WriteString("\n")
}

func generateArtworkSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Artwork Resolution",
		"oembed-url", "artwork-timeout-secs", "artwork-cache-size", "artwork-cache-ttl-mins",
		"artwork-rate-limit-per-minute")
	writeSetting(content, cmd, "oembed-url", "SoundCloud oEmbed endpoint")
	writeSetting(content, cmd, "artwork-timeout-secs", "oEmbed lookup timeout in seconds")
	writeSetting(content, cmd, "artwork-cache-size", "Maximum cached artwork URLs")
	writeSetting(content, cmd, "artwork-cache-ttl-mins", "Entry lifetime in minutes, 0 keeps entries")
	writeSetting(content, cmd, "artwork-rate-limit-per-minute", "Lookups per client per minute, 0 disables")
	content.WriteString("\n")
}

func generateServerSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "HTTP Server Configuration", "server-host", "server-port")
	writeSetting(content, cmd, "server-host", "Server bind address")
	writeSetting(content, cmd, "server-port", "Server port")
	content.WriteString("\n")
}

func generateLoggingSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Logging Configuration", "log-level")
	writeSetting(content, cmd, "log-level", "Log level: debug, info, warn, error")
}
