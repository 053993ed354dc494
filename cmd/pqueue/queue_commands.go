package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pqueue/internal/queue"
)

// maxStdinValue bounds a single line read by push --stdin.
const maxStdinValue = 16 << 20

func newPushCommand(ctx *commandContext) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "push [VALUE...]",
		Short: "Append values to the tail of the queue",
		Long: `Append values to the tail of the queue in argument order.

With --stdin each input line becomes one value. All values of one invocation
are appended atomically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([][]byte, 0, len(args))
			for _, arg := range args {
				values = append(values, []byte(arg))
			}
			if fromStdin {
				lines, err := readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				values = append(values, lines...)
			}
			if len(values) == 0 {
				return errors.New("no values to push (pass VALUE arguments or --stdin)")
			}

			return ctx.withQueue(cmd, true, func(c context.Context, q *queue.Queue) error {
				if err := q.Append(c, values...); err != nil {
					return err
				}
				length, err := q.Len(c)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{
						"queue":    q.ID(),
						"appended": len(values),
						"length":   length,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appended %d value(s) to %s (length %d)\n", len(values), q.ID(), length)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read one value per line from stdin")
	return cmd
}

func newPopCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "pop",
		Short: "Remove and print the oldest values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1 (got %d)", count)
			}
			return ctx.withQueue(cmd, true, func(c context.Context, q *queue.Queue) error {
				removed, err := q.RemoveN(c, count)
				if err != nil {
					return err
				}
				return printValues(cmd, ctx, removed, 0)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of values to remove")
	return cmd
}

func newPeekCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "peek [OFFSET]",
		Short: "Print values without removing them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset := 0
			if len(args) == 1 {
				parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil || parsed < 0 {
					return fmt.Errorf("invalid offset %q", args[0])
				}
				offset = parsed
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1 (got %d)", count)
			}
			return ctx.withQueue(cmd, false, func(c context.Context, q *queue.Queue) error {
				values, err := q.ReadRange(c, offset, count)
				if err != nil {
					return err
				}
				return printValues(cmd, ctx, values, offset)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of values to print")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every value in the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, false, func(c context.Context, q *queue.Queue) error {
				values, err := q.ReadAll(c)
				if err != nil {
					return err
				}
				views := newValueViews(values, 0)
				if ctx.JSONMode() {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Queue %s is empty\n", q.ID())
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(valueColumns, valueRows(views)))
				return nil
			})
		},
	}
}

func newLenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "len",
		Short: "Print the number of values in the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, false, func(c context.Context, q *queue.Queue) error {
				length, err := q.Len(c)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"queue": q.ID(), "length": length})
				}
				fmt.Fprintln(cmd.OutOrStdout(), length)
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every value from the queue",
		Long:  "Remove every value from the selected queue. Other queues sharing the table are left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, true, func(c context.Context, q *queue.Queue) error {
				before, err := q.Len(c)
				if err != nil {
					return err
				}
				if err := q.Clear(c); err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"queue": q.ID(), "cleared": before})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d value(s) from %s\n", before, q.ID())
				return nil
			})
		},
	}
}

// printValues writes raw values one per line, or the JSON views in JSON mode.
// An empty result prints nothing to stdout.
func printValues(cmd *cobra.Command, ctx *commandContext, values [][]byte, offset int) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, newValueViews(values, offset))
	}
	if len(values) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Queue is empty")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, v := range values {
		fmt.Fprintf(out, "%s\n", v)
	}
	return nil
}

func readLines(r io.Reader) ([][]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinValue)
	var lines [][]byte
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
