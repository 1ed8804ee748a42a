package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Corpus":       "コーパス",
		"Output":       "出力先",
		"Processing":   "処理",
		"Extraction":   "特徴抽出",
		"Frame export": "フレーム書き出し",
		"Inference":    "推論",
		"Decoder":      "デコーダー",
		"Debug":        "デバッグ",
		"Logging":      "ログ",

		// Commands
		"Build motion feature datasets from labeled video clips": "ラベル付き動画クリップからモーション特徴量データセットを作成",
		"Featurize a labeled corpus into a dataset":              "ラベル付きコーパスを特徴量データセットに変換",
		"Print the feature vector of one or more videos":         "動画の特徴ベクトルを出力",
		"Inspect the corpus layout without featurizing":          "特徴抽出を行わずにコーパス構成を確認",
		"Print the feature schema and dataset table columns":     "特徴スキーマとデータセット表の列を出力",

		// Global flags
		"YAML configuration file":              "YAML設定ファイル",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, json)":           "ログ形式（console, json）",
		"Suppress all log output":              "全てのログ出力を抑制",
		"Path to the ffmpeg executable":        "ffmpeg実行ファイルのパス",
		"Path to the ffprobe executable":       "ffprobe実行ファイルのパス",

		// Corpus flags
		"Corpus root containing one directory per category":               "カテゴリごとのディレクトリを含むコーパスのルート",
		"Category labels as name:label pairs (e.g., fighting:1,walking:0)": "カテゴリのラベル（name:label の組、例: fighting:1,walking:0）",
		"Recognised video extensions (repeatable)":                         "対象とする動画の拡張子（複数指定可）",

		// Build flags
		"Output directory for features and metadata":                           "特徴量とメタデータの出力ディレクトリ",
		"Recompute videos that already have feature artifacts":                 "特徴量ファイルが既にある動画も再計算",
		"Output execution summary to file (Markdown, or JSON for .json paths)": "実行サマリーをファイルに出力（Markdown形式、.json の場合はJSON形式）",
		"Number of videos processed in parallel (0 = CPU count)":               "並列に処理する動画数（0 = CPU数）",
		"Per-video timeout in seconds (0 = none)":                              "動画ごとのタイムアウト秒数（0 = なし）",
		"Serve Prometheus metrics on this address (e.g., :9090)":               "このアドレスでPrometheusメトリクスを公開（例: :9090）",
		"Disable the progress bar":                                             "プログレスバーを無効化",
		"Export resized JPEG frames for each video":                            "動画ごとにリサイズしたJPEGフレームを書き出し",
		"Exported frame width (default: 224)":                                  "書き出すフレームの幅（デフォルト: 224）",
		"Exported frame height (default: 224)":                                 "書き出すフレームの高さ（デフォルト: 224）",
		"Exported JPEG quality (1-100)":                                        "書き出すJPEGの品質（1-100）",
		"Export every Nth decoded frame":                                       "デコードしたフレームをNフレームごとに書き出し",

		// Extraction flags
		"Optical flow engine (native, farneback, auto)":  "オプティカルフローのエンジン（native, farneback, auto）",
		"Optical flow preset (fast, standard, accurate)": "オプティカルフローのプリセット（fast, standard, accurate）",
		"Compute flow on every Nth frame pair":           "Nフレームペアごとにフローを計算",
		"Stop decoding after this many frames (0 = all)": "このフレーム数でデコードを停止（0 = 全て）",
		"Enable debug output":                            "デバッグ出力を有効化",
		"Directory for debug output":                     "デバッグ出力のディレクトリ",

		// Extract and schema flags
		"Classifier artifact (JSON) used to label each video":   "各動画のラベル付けに使う分類器ファイル（JSON）",
		"Print the dataset table columns instead of the schema": "スキーマの代わりにデータセット表の列を出力",

		// Progress
		"Featurizing": "特徴抽出中",

		// Runtime messages
		"Build interrupted; completed videos are kept and resume on the next run": "ビルドが中断されました。完了した動画は保持され、次回の実行で再開されます",
		"%d of %d videos could not be featurized":                                 "%d / %d 本の動画から特徴量を抽出できませんでした",

		// Error messages
		"At least one video argument is required": "動画引数が少なくとも1つ必要です",
		"Corpus root is required (--root)":        "コーパスのルートが必要です（--root）",

		// Check output
		"CATEGORY": "カテゴリ",
		"LABEL":    "ラベル",
		"STATUS":   "状態",
		"VIDEOS":   "動画",
		"SAMPLE":   "サンプル",
		"ok":       "OK",
		"missing":  "なし",

		// Summary content
		"Dataset Build Summary": "データセット作成サマリー",
		"Run":                   "実行",
		"Item":                  "項目",
		"Value":                 "値",
		"Count":                 "件数",
		"Run ID":                "実行ID",
		"Duration":              "所要時間",
		"Status":                "状態",
		"Completed":             "完了",
		"Interrupted":           "中断",
		"Schema":                "スキーマ",
		"Workers":               "ワーカー数",
		"Per-video timeout":     "動画ごとのタイムアウト",
		"Flow preset":           "フロープリセット",
		"Flow engine":           "フローエンジン",
		"Results":               "実行結果",
		"Processed":             "処理済み",
		"Resumed":               "再開",
		"Low confidence":        "低信頼度",
		"Skipped":               "スキップ",
		"Categories":            "カテゴリ",
		"Category":              "カテゴリ",
		"Label":                 "ラベル",
		"Directory missing":     "ディレクトリなし",
		"Skipped Videos":        "スキップした動画",
		"Video":                 "動画",
		"Reason":                "理由",
		"Detail":                "詳細",
		"... and %d more":       "... ほか %d 件",
		"Generated at":          "生成日時",
		"None":                  "なし",
		"Yes":                   "はい",
		"No":                    "いいえ",
	})
}
