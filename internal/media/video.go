package media

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// VideoGenerationError indicates the video backend finished with an
// error or produced no usable asset. Callers substitute a fallback URL.
type VideoGenerationError struct {
	Detail string
}

func (e *VideoGenerationError) Error() string {
	return fmt.Sprintf("video generation failed: %s", e.Detail)
}

const videoPollInterval = 5 * time.Second

// jst pins the date segment of Veo output folders to Japan time.
var jst = time.FixedZone("JST", 9*60*60)

const battlePromptTemplate = `[PRODUCT A]:< %s >
[PRODUCT B]:< %s >

**Core Concept:** A dynamic, 8-second, seamless loop of a 3D animated battle. This video is intended as a background element for a mobile app that compares two products, provided as text inputs [PRODUCT A] and [PRODUCT B].

**Style & Mood:**
*   **Visual Style:** Vibrant, high-quality 3D animation. The aesthetic is inspired by the cheerful and dynamic style of popular Japanese battle games, but must be a **unique and original creation**. The look should be cute, pop, and playful.
*   **Color Palette:** The overall scene uses a bright, pastel-based color palette. Turquoise (#00C6C2) and gold (#FFD700) are used as key accent colors, creating a dynamic and appealing color scheme reminiscent of a modern trading card game.
*   **Atmosphere:** Fun, energetic, and friendly competition. The action is cartoonish and joyful, completely avoiding any realistic or intense violence.

**Sound Design:**
*   Add cheerful, upbeat electronic background music that loops seamlessly with the video.
*   Include playful and lighthearted sound effects for the actions (e.g., 'swoosh', 'zap', 'poof').
*   Incorporate cute giggling or cheering sounds from the characters occasionally, especially during expressive moments.

**Scene Description:**
*   **Setting:** A minimalist and brightly lit circular battle arena. The stage's theme should be creatively and subtly inspired by the general category of the two products being compared (e.g., a cyber-themed stage for electronics, a giant kitchen-themed stage for food items).
*   **Characters:**
    *   **Character A:** An anthropomorphic mascot representation of **[PRODUCT A]**. The character's design is the product itself, brought to life with cute arms and legs.
    *   **Character B:** An anthropomorphic mascot representation of **[PRODUCT B]**. Similarly, its design is the product itself with arms and legs.
    *   **Facial Expressions:** Both characters have large, innocent, and expressive eyes and a friendly smile. The style should be universally appealing and cute, **without directly copying any existing famous characters.**
*   **Action (8-Second Loop):**
    *   The two mascot characters engage in a continuous, dance-like battle.
    *   **"Merit" Attacks:** Their attacks are cartoonish, non-violent, and playfully inspired by the strengths and benefits of their respective products.
    *   **"Demerit" Reactions:** When a character is "hit" by an opponent's attack, it reacts in a comical and exaggerated way, such as being briefly knocked off-balance or spinning with dizzy stars.
    *   The action is fluid with nimble dodges and fun effects like sparkles and colorful puffs of smoke.
    *   The 8-second sequence must start and end in a similar, neutral confrontational pose to ensure a perfect, seamless loop.

**Constraints:**
*   **Originality and IP:** The generated characters, stage, and effects must be **original designs**. They must not resemble or infringe upon the intellectual property of any existing brands, franchises, or specific characters. The style should be *inspired by* the genre, not a direct copy.
*   **No Text:** Absolutely no text, letters, or numbers are to be rendered in the video.
*   **Seamless Loop:** The final output must be a perfectly seamless 8-second loop.
*   **High Frame Rate:** Render at a high frame rate for ultra-smooth motion.
*   **Positive Expressions:** The characters' facial expressions should always be positive and cute, avoiding any signs of genuine pain or distress.`

// BattlePrompt renders the fixed battle narrative template with the two
// product summaries. Pure string templating, no model involved.
func BattlePrompt(productASummary, productBSummary string) string {
	return strings.TrimSpace(fmt.Sprintf(battlePromptTemplate, productASummary, productBSummary))
}

// GenerateBattleVideo submits a Veo job for the given prompt, polls it
// to completion, and returns a signed URL for the generated clip.
// Output lands under gs://<bucket>/<date>/<session>. There is no
// internal deadline; ctx is the only cancellation path.
func (p *Pipeline) GenerateBattleVideo(ctx context.Context, sessionID, prompt string) (string, error) {
	date := time.Now().In(jst).Format("2006-01-02")
	outputFolder := fmt.Sprintf("gs://%s/%s/%s", p.store.Bucket(), date, sessionID)

	op, err := p.llm.StartVideoJob(ctx, p.models.Video, prompt, outputFolder)
	if err != nil {
		return "", err
	}
	p.log.Info("Video generation started", "session_id", sessionID, "operation", op.Name)

	for !op.Done {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(videoPollInterval):
		}

		op, err = p.llm.PollVideoJob(ctx, op)
		if err != nil {
			return "", err
		}
	}

	if op.Error != nil {
		return "", &VideoGenerationError{Detail: fmt.Sprint(op.Error)}
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil || op.Response.GeneratedVideos[0].Video.URI == "" {
		return "", &VideoGenerationError{Detail: "operation completed without a generated video"}
	}

	url, err := p.store.SignGSURI(ctx, op.Response.GeneratedVideos[0].Video.URI)
	if err != nil {
		return "", err
	}

	p.log.Info("Video generation finished", "session_id", sessionID)
	return url, nil
}
