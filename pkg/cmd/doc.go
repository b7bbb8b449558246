// Package cmd provides the steward command-line interface.
//
// Commands are urfave/cli/v3 commands collected through the fx
// `group:"commands"` value group and run by Run.
//
// # Available Commands
//
//   - migrate: apply or revert migrations for one app or all apps
//   - rehash: regenerate each app's steward.sum integrity file
//
// # Global Options
//
//   - --dir, -d: the project directory (defaults to the current directory)
//
// # Example Usage
//
//	steward migrate blog                     # bring blog up to date
//	steward migrate blog 0003                # move blog to 0003_* (forwards or backwards)
//	steward migrate blog zero                # revert every blog migration
//	steward migrate --all --db-dry-run       # rehearse every app
//	steward migrate blog --list -v 2         # show applied state with timestamps
//	steward migrate blog --changes           # describe schema snapshot changes
//	steward rehash                           # rewrite steward.sum files
package cmd
