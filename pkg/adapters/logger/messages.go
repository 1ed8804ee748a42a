package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Build level messages (info)
		"Run %s: %d videos in %d categories, %d workers":         "実行 %s: %d 本の動画 (%d カテゴリ), %d ワーカー",
		"Interrupted, shutting down...":                          "中断されました。シャットダウン中...",
		"Build completed: %d processed (%d resumed), %d skipped": "ビルド完了: %d 本処理 (%d 本再開), %d 本スキップ",

		// Per-video messages (debug)
		"Processed %s: %d frames":           "%s を処理しました: %d フレーム",
		"Resumed %s from existing artifact": "既存の成果物から %s を再開しました",
		"Recomputing %s: %v":                "%s を再計算します: %v",
		"Exported %d frames to %s":          "%d フレームを %s に書き出しました",

		// Extract stage
		"Decoding %s (%dx%d, %d frames declared)":                   "%s をデコード中 (%dx%d, 宣言フレーム数 %d)",
		"Extracted %s: %d frames, mean motion %.3f, mean flow %.3f": "%s を抽出しました: %d フレーム, 平均モーション %.3f, 平均フロー %.3f",

		// Inference
		"Predicted %s: label %d": "%s の予測: ラベル %d",
		"Flow engine: %s":        "フローエンジン: %s",

		// CLI
		"Output saved to %s":  "出力を %s に保存しました",
		"Summary saved to %s": "サマリーを %s に保存しました",

		// Metrics server
		"Metrics server listening on %s": "メトリクスサーバーが %s で待機中",

		// Warnings
		"Category directory missing: %s":                      "カテゴリディレクトリがありません: %s",
		"Skipped %s (%s): %s":                                 "%s をスキップしました (%s): %s",
		"Build interrupted after %d of %d videos":             "%d / %d 本の時点でビルドが中断されました",
		"Failed to write metadata: %v":                        "メタデータの書き込みに失敗しました: %v",
		"Failed to save debug series for %s: %v":              "%s のデバッグ系列の保存に失敗しました: %v",
		"Low-confidence features for %s: %d frames":           "%s の特徴量は信頼度が低いです: %d フレーム",
		"Failed to write summary: %v":                         "サマリーの書き込みに失敗しました: %v",
		"ffmpeg unavailable, probing MP4 containers only: %v": "ffmpeg が利用できないため MP4 コンテナのみ調査します: %v",

		// Errors
		"Build aborted: %v":        "ビルドを中止しました: %v",
		"Metrics server error: %v": "メトリクスサーバーのエラー: %v",
	})
}
