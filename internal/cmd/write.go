package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/models"
	"github.com/naqd/naqd/internal/provenance"
)

type createdResult struct {
	ID string `json:"id"`
}

// authorFlags are shared by post and comment
type authorFlags struct {
	author    string
	anonymous bool
}

func (f *authorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.author, "author", "", "Author name")
	cmd.Flags().BoolVar(&f.anonymous, "anonymous", false, "Publish without a name")
}

// fieldError turns a validation error into "field: message"
func fieldError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %s", verr.Field, verr.Message)
	}
	return err
}

// create validates the draft built from content, passes the auth gate, then
// calls method and records the new id. Content read from stdin comes after
// the password, so it is only read and validated once the gate is passed.
func (a *app) create(cmd *cobra.Command, kind provenance.Kind, method, content string, build func(text string) (interface{}, error)) (string, error) {
	var params interface{}
	if content != "-" {
		text, err := a.readContent(cmd, content)
		if err != nil {
			return "", err
		}
		if params, err = build(text); err != nil {
			return "", fieldError(err)
		}
	}

	if _, err := a.unlock(cmd, gate.ActionAuth); err != nil {
		return "", err
	}

	if params == nil {
		text, err := a.readContent(cmd, content)
		if err != nil {
			return "", err
		}
		if params, err = build(text); err != nil {
			return "", fieldError(err)
		}
	}

	var res createdResult
	if err := a.rpc.Call(cmd.Context(), method, params, &res); err != nil {
		return "", err
	}

	if err := provenance.NewTracker(a.state.Provenance()).RecordCreated(cmd.Context(), kind, res.ID); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}
	return res.ID, nil
}

func (a *app) postCmd() *cobra.Command {
	var (
		draft   models.PostDraft
		content string
		who     authorFlags
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a new post",
		Long: `Publish a new post. Asks for the writing password once per run.

--content takes the text itself, @file to read it from a file, or - to read
it from stdin. With - and no terminal attached, the first line of stdin is
the password and the rest is the text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.AuthorName = who.author
			draft.IsAnonymous = who.anonymous

			id, err := a.create(cmd, provenance.KindPost, "forum.create_post", content, func(text string) (interface{}, error) {
				draft.Content = text
				if _, err := draft.Build(); err != nil {
					return nil, err
				}
				return draft, nil
			})
			if err != nil {
				return err
			}
			return a.print(cmd, createdResult{ID: id}, func(w io.Writer) error {
				fmt.Fprintf(w, "تم نشر المقال  [%s]\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post text, @file or - for stdin")
	cmd.Flags().StringVar(&draft.CriticismLevel, "level", string(models.DefaultCriticismLevel), "Criticism level (light|moderate|harsh)")
	who.register(cmd)
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	var (
		content string
		replyTo string
		who     authorFlags
	)

	cmd := &cobra.Command{
		Use:   "comment <post-id>",
		Short: "Comment on a post, or reply to a comment with --reply-to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := models.CommentDraft{
				PostID:      args[0],
				AuthorName:  who.author,
				IsAnonymous: who.anonymous,
			}
			if replyTo != "" {
				draft.ParentCommentID = &replyTo
			}

			id, err := a.create(cmd, provenance.KindComment, "forum.create_comment", content, func(text string) (interface{}, error) {
				draft.Content = text
				if _, err := draft.Build(); err != nil {
					return nil, err
				}
				return draft, nil
			})
			if err != nil {
				return err
			}
			return a.print(cmd, createdResult{ID: id}, func(w io.Writer) error {
				fmt.Fprintf(w, "تم نشر التعليق  [%s]\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Comment text, @file or - for stdin")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "Id of the comment being answered")
	who.register(cmd)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "delete <post|comment> <id>",
		Short:     "Delete a post with all its comments, or a comment with all its replies",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"post", "comment"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := provenance.ParseKind(args[0])
			if err != nil {
				return err
			}
			method := "forum.delete_post"
			if kind == provenance.KindComment {
				method = "forum.delete_comment"
			}

			password, err := a.unlock(cmd, gate.ActionDelete)
			if err != nil {
				return err
			}

			var res struct {
				Deleted bool `json:"deleted"`
			}
			err = a.rpc.Call(cmd.Context(), method, map[string]string{"id": args[1], "password": password}, &res)
			if rpcCode(err) == codeLockedOut {
				// The server counts its own attempts; mirror its verdict here.
				if lerr := a.state.SaveLockout(cmd.Context(), gate.ActionDelete, gate.Lockout{FailedAttempts: gate.DefaultMaxAttempts, Disabled: true}); lerr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", lerr)
				}
				return errLockedOut
			}
			if err != nil {
				return err
			}

			return a.print(cmd, res, func(w io.Writer) error {
				if kind == provenance.KindPost {
					fmt.Fprintln(w, "تم حذف المقال")
				} else {
					fmt.Fprintln(w, "تم حذف التعليق")
				}
				return nil
			})
		},
	}
}
