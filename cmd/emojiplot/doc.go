// Package main hosts the emojiplot CLI entrypoint and command graph.
//
// The Cobra-based command tree starts interactive or line-mode game sessions,
// inspects and pre-warms the artifact cache, lists the candidate titles,
// checks the text service, and scaffolds configuration. It centralizes
// configuration resolution, .env loading and logger setup so subcommands only
// wire internal packages together.
package main
