// Package driving defines the interfaces external actors use to drive
// the core: the CLI, the MCP server, and tests.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
