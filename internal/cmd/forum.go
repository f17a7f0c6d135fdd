package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/api/objects"
	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/provenance"
	"github.com/naqd/naqd/internal/thread"
)

// mine marks content created from this device, or reported as such by the server
func (a *app) mine(cmd *cobra.Command, kind provenance.Kind) func(id string, server bool) bool {
	tracker := provenance.NewTracker(a.state.Provenance())
	return func(id string, server bool) bool {
		if server {
			return true
		}
		ok, err := tracker.WasCreatedByMe(cmd.Context(), kind, id)
		return err == nil && ok
	}
}

func (a *app) postsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var posts []objects.PostSummaryObject
			if err := a.rpc.Call(cmd.Context(), "forum.list_posts", nil, &posts); err != nil {
				return err
			}

			var banner *struct {
				Message string `json:"message"`
			}
			// The banner is decoration; a failure here must not hide the posts.
			_ = a.rpc.Call(cmd.Context(), "forum.announcement", nil, &banner)

			mine := a.mine(cmd, provenance.KindPost)
			for i := range posts {
				posts[i].CreatedByMe = mine(posts[i].ID, posts[i].CreatedByMe)
			}

			return a.print(cmd, posts, func(w io.Writer) error {
				if banner != nil && banner.Message != "" {
					fmt.Fprintf(w, "📢 %s\n\n", banner.Message)
				}
				if len(posts) == 0 {
					fmt.Fprintln(w, "لا توجد مقالات بعد")
					return nil
				}
				for _, p := range posts {
					fmt.Fprintf(w, "%s%s\n", mark(p.CreatedByMe), p.Title)
					fmt.Fprintf(w, "    %s · %s · %s · %d تعليق  [%s]\n",
						author(p.AuthorName, p.IsAnonymous),
						models.CriticismLevel(p.CriticismLevel).Label(),
						stamp(p.CreatedAt), p.CommentCount, p.ID)
				}
				return nil
			})
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post with its comment thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var detail objects.PostDetail
			if err := a.rpc.Call(cmd.Context(), "forum.get_post", map[string]string{"id": args[0]}, &detail); err != nil {
				return err
			}

			detail.Post.CreatedByMe = a.mine(cmd, provenance.KindPost)(detail.Post.ID, detail.Post.CreatedByMe)
			comments := flattenComments(detail.Comments)
			serverMine := make(map[string]bool)
			collectMine(detail.Comments, serverMine)
			mineComment := a.mine(cmd, provenance.KindComment)

			return a.print(cmd, detail, func(w io.Writer) error {
				p := detail.Post
				fmt.Fprintf(w, "%s%s\n", mark(p.CreatedByMe), p.Title)
				fmt.Fprintf(w, "    %s · %s · %s\n\n", author(p.AuthorName, p.IsAnonymous),
					models.CriticismLevel(p.CriticismLevel).Label(), stamp(p.CreatedAt))
				fmt.Fprintln(w, strings.TrimRight(p.Content, "\n"))
				fmt.Fprintf(w, "\nالتعليقات (%d)\n\n", detail.CommentCount)

				if len(comments) == 0 {
					fmt.Fprintln(w, "لا توجد تعليقات بعد")
					return nil
				}
				renderThread(w, thread.Build(comments), a.depth, func(id string) bool {
					return mineComment(id, serverMine[id])
				})
				return nil
			})
		},
	}
}

func collectMine(nodes []*objects.CommentObject, into map[string]bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.CreatedByMe {
			into[n.ID] = true
		}
		collectMine(n.Replies, into)
	}
}

func (a *app) latestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the latest comments across all posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var latest []objects.LatestCommentObject
			if err := a.rpc.Call(cmd.Context(), "forum.latest_comments", map[string]int{"limit": limit}, &latest); err != nil {
				return err
			}

			mine := a.mine(cmd, provenance.KindComment)
			for i := range latest {
				latest[i].CreatedByMe = mine(latest[i].ID, latest[i].CreatedByMe)
			}

			return a.print(cmd, latest, func(w io.Writer) error {
				fmt.Fprintln(w, "أحدث التعليقات")
				fmt.Fprintln(w)
				if len(latest) == 0 {
					fmt.Fprintln(w, "لا توجد تعليقات بعد")
					return nil
				}
				for _, c := range latest {
					fmt.Fprintf(w, "%s%s · %s · %s\n", mark(c.CreatedByMe),
						author(c.AuthorName, c.IsAnonymous), c.Post.Title, stamp(c.CreatedAt))
					fmt.Fprintf(w, "    %s\n", oneLine(c.Content, 120))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of comments to show, at most 50 (default: the server's setting)")
	return cmd
}

// oneLine collapses whitespace and cuts s to max runes
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > max {
		return string(r[:max]) + "…"
	}
	return s
}
