package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shoplens/internal/core"
	"shoplens/internal/jsonextract"
	"shoplens/internal/media"
)

// battleFallbackVideoURL is served when video generation fails so the
// battle screen always has something to play.
const battleFallbackVideoURL = "https://storage.googleapis.com/public-dds-react-camp-machu/battle_movies/Fighting_Game_Product_Battle_Video.mp4"

type battleScript struct {
	Product1Description []string `json:"product1_description"`
	Product2Description []string `json:"product2_description"`
}

// Battle generates three selling points per product and a battle video.
// The script is mandatory; the video degrades to a static fallback clip
// when generation fails.
func (a *Advisor) Battle(ctx context.Context, productName1, productName2 string) (core.BattleResult, error) {
	battleID := "battle-" + uuid.NewString()

	raw, err := a.text.CompleteJSON(ctx, a.models.Chat, fmt.Sprintf(battleScriptPromptTemplate, productName1, productName2))
	if err != nil {
		return core.BattleResult{}, fmt.Errorf("battle script generation failed: %w", err)
	}

	var script battleScript
	if err := jsonextract.Unmarshal(raw, &script); err != nil {
		return core.BattleResult{}, fmt.Errorf("battle script returned malformed output: %w", err)
	}
	if len(script.Product1Description) == 0 || len(script.Product2Description) == 0 {
		return core.BattleResult{}, fmt.Errorf("battle script is missing selling points")
	}

	prompt := media.BattlePrompt(
		fmt.Sprintf("%s: %s", productName1, strings.Join(script.Product1Description, " ")),
		fmt.Sprintf("%s: %s", productName2, strings.Join(script.Product2Description, " ")),
	)

	videoURL, err := a.videos.GenerateBattleVideo(ctx, battleID, prompt)
	if err != nil {
		a.log.Warn("Battle video generation failed, serving fallback", "error", err, "battle_id", battleID)
		videoURL = battleFallbackVideoURL
	}

	return core.BattleResult{
		ID:                  battleID,
		Product1ID:          "dummy-prod-1",
		Product1Name:        productName1,
		Product1Description: script.Product1Description,
		Product2ID:          "dummy-prod-2",
		Product2Name:        productName2,
		Product2Description: script.Product2Description,
		VideoPrompt:         prompt,
		VideoURL:            videoURL,
	}, nil
}
