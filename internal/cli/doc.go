// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the prepchat command line.

Commands:

	prepchat                 interactive chat (TUI)
	prepchat ask [text]      send one message and stream the reply to stdout
	prepchat config show     print the effective configuration
	prepchat config path     print the configuration file path
	prepchat config init     write a default configuration file

Global flags:

	--config PATH     configuration file (default ~/.prepchat/config.toml)
	--endpoint URL    endpoint URL, overrides config and PREPCHAT_ENDPOINT

When stdin or stdout is not a terminal, the root command behaves like ask,
so prepchat can be used in pipes:

	echo "How do I answer 'tell me about yourself'?" | prepchat
*/
package cli
