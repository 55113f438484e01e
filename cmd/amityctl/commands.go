package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/LauraLerebours/our-shared-echoes-now-sub001/client"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/auth"
	"github.com/LauraLerebours/our-shared-echoes-now-sub001/internal/model"
)

func newSDKClient(cmd *cobra.Command) *client.Client {
	token := tokenFlag
	if token == "" {
		token = auth.LocalDevToken
	}
	opts := []client.Option{client.WithHTTPTimeout(30 * time.Second)}
	if path, _ := cmd.Flags().GetString("store"); path != "" {
		opts = append(opts, client.WithLocalStorePath(path))
	}
	return client.New(apiFlag, token, opts...)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Manage boards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List boards you belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			boards, err := c.ListBoards(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(boards)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			b, err := c.CreateBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(b)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "join <share-code>",
		Short: "Join a board by share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			b, err := c.JoinBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(b)
		},
	})

	inviteCmd := &cobra.Command{
		Use:   "invite <board-id> <email>",
		Short: "Invite someone to a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			inv, err := c.InviteToBoard(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(inv)
		},
	}
	cmd.AddCommand(inviteCmd)

	return cmd
}

func newDraftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage local drafts and sync them",
	}
	cmd.PersistentFlags().String("store", "", "Path to the local draft database (default: in-memory)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List local drafts after a sync pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			if err := c.SyncNow(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: sync failed, showing local drafts: %v\n", err)
			}
			drafts, err := c.ListDrafts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(drafts)
		},
	})

	saveCmd := &cobra.Command{
		Use:   "save <draft-id>",
		Short: "Save a note draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, _ := cmd.Flags().GetString("board")
			caption, _ := cmd.Flags().GetString("caption")
			if boardID == "" {
				return fmt.Errorf("--board required")
			}
			c := newSDKClient(cmd)
			defer c.Close()
			d := &model.Draft{
				DraftID:    args[0],
				BoardID:    boardID,
				MemoryType: model.MemoryTypeNote,
				Caption:    &caption,
			}
			if err := c.SaveDraft(cmd.Context(), d); err != nil {
				return err
			}
			return c.SyncNow(syncCtx(cmd.Context()))
		},
	}
	saveCmd.Flags().StringP("board", "b", "", "Board ID (required)")
	saveCmd.Flags().StringP("caption", "c", "", "Draft caption")
	cmd.AddCommand(saveCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <draft-id>",
		Short: "Delete a draft everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			if err := c.DeleteDraft(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.SyncNow(syncCtx(cmd.Context()))
		},
	})

	gcCmd := &cobra.Command{
		Use:   "gc",
		Short: "Purge old deletion tombstones from the local draft database",
		RunE: func(cmd *cobra.Command, args []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			c := newSDKClient(cmd)
			defer c.Close()
			n, err := c.PurgeDeleted(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Printf("purged %d tombstone(s)\n", n)
			return nil
		},
	}
	gcCmd.Flags().Duration("older-than", 30*24*time.Hour, "Only purge tombstones older than this")
	cmd.AddCommand(gcCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "publish <draft-id>",
		Short: "Publish a draft as a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newSDKClient(cmd)
			defer c.Close()
			m, err := c.PublishDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	})

	return cmd
}

func newMemoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memories",
		Short: "Read board feeds",
	}

	listCmd := &cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's memories, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			c := newSDKClient(cmd)
			defer c.Close()
			feed, err := c.ListMemories(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			return printJSON(feed)
		},
	}
	listCmd.Flags().IntP("limit", "n", 0, "Maximum results (0 = server default)")
	cmd.AddCommand(listCmd)

	return cmd
}

func newMintTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint-token <user-id> <email>",
		Short: "Mint a signed bearer token (requires the server's auth secret)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				secret = os.Getenv("AMITY_AUTH_SECRET")
			}
			az, err := auth.NewSignedTokenAuthorizer(secret)
			if err != nil {
				return err
			}
			fmt.Println(az.MintToken(args[0], args[1]))
			return nil
		},
	}
	cmd.Flags().String("secret", "", "Auth secret (defaults to AMITY_AUTH_SECRET)")
	return cmd
}

// syncCtx bounds the final blocking sync of a one-shot command.
func syncCtx(parent context.Context) context.Context {
	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	_ = cancel // command exits right after; context is short-lived by design
	return ctx
}
