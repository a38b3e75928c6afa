// Package commands defines the veilmarket CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create or import the local wallet key
//   - address        Print the wallet address
//   - config         Print the effective configuration
//   - events         List prediction events
//   - event          Show one event
//   - create-event   Create a prediction event
//   - bet            Place an encrypted bet
//   - reveal         Decrypt your bets
//   - bets           List bets placed from this client
//   - resolve        Resolve an event
//   - rewards        Show pending rewards
//   - claim          Claim the reward on an event
//   - last-error     Decrypt the result code of your last contract call
//
// # Implementation
//
// The root command loads the configuration, resolves the network and
// builds the offline dependency graph (stores, identity service, relayer
// client) before any subcommand runs. Commands that need the chain connect
// on demand and share one session for the life of the process.
package commands
