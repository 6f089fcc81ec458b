// Package commands defines the hangman CLI and wires dependencies for subcommands.
//
// Commands
//
//   - play     Menu-driven game in the terminal
//   - tui      Full-screen game
//   - serve    HTTP API, daily challenge and websocket chat-bot
//   - words    List or edit the word bank
//
// # Configuration
//
// The root command loads the environment (and .env) into a config.Config
// before any subcommand runs. Persistent flags override the matching
// variables: --log-level (LOG_LEVEL), --words (WORDS_FILE) and
// --max-incorrect (MAX_INCORRECT).
package commands
