package intent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding/mock"
	"github.com/agentic-store/concierge/pkg/service/intent"
)

func TestExtractProductID(t *testing.T) {
	cases := []struct {
		in string
		id int64
		ok bool
	}{
		{"tell me about product 12", 12, true},
		{"show me item #3", 3, true},
		{"what is id 42", 42, true},
		{"I want wireless earbuds", 0, false},
		{"product zero hmm", 0, false},
	}

	for _, tc := range cases {
		id, ok := intent.ExtractProductID(tc.in)
		gt.Value(t, ok).Equal(tc.ok)
		if tc.ok {
			gt.Value(t, id).Equal(tc.id)
		}
	}
}

func TestExtractPriceRange(t *testing.T) {
	t.Run("under", func(t *testing.T) {
		lo, hi, ok := intent.ExtractPriceRange("headphones under $100")
		gt.Bool(t, ok).True()
		gt.Value(t, lo).Equal(0.0)
		gt.Value(t, hi).Equal(100.0)
	})

	t.Run("between", func(t *testing.T) {
		lo, hi, ok := intent.ExtractPriceRange("something between $50 and $150")
		gt.Bool(t, ok).True()
		gt.Value(t, lo).Equal(50.0)
		gt.Value(t, hi).Equal(150.0)
	})

	t.Run("around widens by 50", func(t *testing.T) {
		lo, hi, ok := intent.ExtractPriceRange("a gift around $80")
		gt.Bool(t, ok).True()
		gt.Value(t, lo).Equal(30.0)
		gt.Value(t, hi).Equal(130.0)
	})

	t.Run("over", func(t *testing.T) {
		lo, hi, ok := intent.ExtractPriceRange("premium laptops over $1000")
		gt.Bool(t, ok).True()
		gt.Value(t, lo).Equal(1000.0)
		gt.Value(t, hi).Equal(0.0)
	})

	t.Run("budget", func(t *testing.T) {
		_, hi, ok := intent.ExtractPriceRange("my budget is $200")
		gt.Bool(t, ok).True()
		gt.Value(t, hi).Equal(200.0)
	})

	t.Run("no price", func(t *testing.T) {
		_, _, ok := intent.ExtractPriceRange("do you sell coffee machines")
		gt.Bool(t, ok).False()
	})
}

func TestExtractCategory(t *testing.T) {
	categories := []string{"Audio", "Kitchen", "Home Audio"}

	gt.Value(t, intent.ExtractCategory("I need new kitchen gear", categories)).Equal("Kitchen")
	// longest match wins
	gt.Value(t, intent.ExtractCategory("looking for home audio equipment", categories)).Equal("Home Audio")
	gt.Value(t, intent.ExtractCategory("nothing relevant here", categories)).Equal("")
}

func TestClassifyLexical(t *testing.T) {
	// a failing embedder forces the lexical tiers
	embedder := mock.New(64)
	embedder.SetError(errors.New("embedding down"))
	router := intent.New(embedder)
	ctx := context.Background()

	t.Run("explicit product reference", func(t *testing.T) {
		it := router.Classify(ctx, "tell me about product 5", nil)
		gt.Value(t, it.Kind).Equal(types.IntentProductLookup)
		gt.Value(t, it.ProductID).Equal(int64(5))
	})

	t.Run("issue keywords", func(t *testing.T) {
		it := router.Classify(ctx, "The checkout page is broken", nil)
		gt.Value(t, it.Kind).Equal(types.IntentIssueReport)
		gt.Value(t, it.Text).Equal("The checkout page is broken")
	})

	t.Run("search keywords", func(t *testing.T) {
		it := router.Classify(ctx, "I'm looking for wireless earbuds", nil)
		gt.Value(t, it.Kind).Equal(types.IntentProductSearch)
	})

	t.Run("plain greeting is general", func(t *testing.T) {
		it := router.Classify(ctx, "hello there", nil)
		gt.Value(t, it.Kind).Equal(types.IntentGeneral)
	})
}

func TestClassifyFollowUp(t *testing.T) {
	embedder := mock.New(64)
	embedder.SetError(errors.New("embedding down"))
	router := intent.New(embedder)
	ctx := context.Background()

	history := []model.ConversationTurn{
		{Role: types.RoleUser, Content: "I'm looking for wireless earbuds", Timestamp: time.Now()},
		{Role: types.RoleAssistant, Content: "Here are a few options.", Timestamp: time.Now()},
	}

	t.Run("inconclusive follow-up inherits the search topic", func(t *testing.T) {
		it := router.Classify(ctx, "anything in black", history)
		gt.Value(t, it.Kind).Equal(types.IntentProductSearch)
		gt.Value(t, it.Query).Equal("anything in black")
	})

	t.Run("without history it stays general", func(t *testing.T) {
		it := router.Classify(ctx, "anything in black", nil)
		gt.Value(t, it.Kind).Equal(types.IntentGeneral)
	})
}

func TestClassifySemantic(t *testing.T) {
	// the deterministic embedder keys on shared tokens, so a message reusing
	// exemplar wording lands in that intent's centroid
	router := intent.New(mock.New(256))
	ctx := context.Background()

	it := router.Classify(ctx, "can you recommend a good coffee maker for me", nil)
	gt.Value(t, it.Kind).Equal(types.IntentProductSearch)
}
