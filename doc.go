// Package frameflow defines the campaign data model shared by the FrameFlow
// compositing engine.
//
// # Overview
//
// A campaign is a creator-published visual template: either a photo frame
// overlay that participants place their own photo under, or a document
// background carrying a set of positioned text fields that participants
// fill in. The packages in this module turn a campaign plus participant
// input into raster artifacts:
//
//   - geom: shared percent/pixel geometry and text extent math
//   - assets: raster and font loading
//   - render: the compositor (one Request in, one frame out)
//   - interact: pointer handling and hit-testing
//   - export: PNG, PDF and bulk ZIP artifact generation
//   - editor: creator-side field layout authoring
//
// # Quick Start
//
//	tpl, _ := assets.Decode(bytes.NewReader(framePNG))
//	comp := render.NewCompositor(fonts)
//	dc, _ := comp.Render(render.Request{
//	    Campaign: campaign,
//	    Template: tpl,
//	    Overrides: render.NewOverrides(campaign.Fields),
//	})
//	dc.EncodePNG(w)
//
// Surrounding concerns (accounts, persistence, analytics transport) belong
// to the host application. The engine receives a Campaign and callbacks and
// never reaches into ambient state.
package frameflow
