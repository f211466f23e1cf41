// Package shell runs the external tools a release delegates to (npm,
// python) and guards against two releases running at once.
//
// Commands go through the Runner interface so publishers can be tested
// without spawning processes:
//
//	runner := shell.NewExecRunner(os.Stdout, os.Stderr)
//	err := runner.Run(ctx, shell.Command{
//		Name: "npm",
//		Args: []string{"publish"},
//		Dir:  pkgDir,
//	})
//
// A non-zero exit is reported as an error marked with errors.ErrCommandFailed.
package shell
