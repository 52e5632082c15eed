// Package providers groups the model-listing clients for each supported
// model-hosting service.
//
// It is organized into sub-packages:
//   - [github.com/vectora-ai/vectora/pkg/providers/model]: the normalized model descriptor shared by all providers
//   - [github.com/vectora-ai/vectora/pkg/providers/provider]: provider IDs, Lister/Normalizer contracts, and the embeddable HTTP Client
//   - [github.com/vectora-ai/vectora/pkg/providers/cerebras], [github.com/vectora-ai/vectora/pkg/providers/gemini], [github.com/vectora-ai/vectora/pkg/providers/groq]: per-provider response parsing
//
// Provider-specific response quirks stay in the concrete packages; the catalog
// resolver only sees descriptors.
package providers
