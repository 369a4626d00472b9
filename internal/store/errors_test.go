package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: ErrDuplicate},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}, want: ErrForeignKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("translate() = %v, want %v", got, tt.want)
			}
		})
	}

	plain := errors.New("connection reset")
	if got := translate(plain); got != plain {
		t.Errorf("translate passed through %v, want %v unchanged", got, plain)
	}
}

func TestTranslateLikeInsert(t *testing.T) {
	postFK := &pq.Error{Code: "23503", Constraint: "likes_post_id_fkey"}
	if got := translateLikeInsert(postFK); !errors.Is(got, ErrForeignKey) {
		t.Errorf("post fk = %v, want ErrForeignKey", got)
	}

	// A dangling user reference is not an unknown post.
	userFK := &pq.Error{Code: "23503", Constraint: "likes_user_id_fkey"}
	got := translateLikeInsert(userFK)
	if errors.Is(got, ErrForeignKey) {
		t.Error("user fk reported as ErrForeignKey")
	}
	if !errors.Is(got, userFK) {
		t.Errorf("user fk = %v, want the raw fault preserved", got)
	}

	dup := &pq.Error{Code: "23505", Constraint: "likes_post_user_key"}
	if got := translateLikeInsert(dup); !errors.Is(got, ErrDuplicate) {
		t.Errorf("unique violation = %v, want ErrDuplicate", got)
	}
}
