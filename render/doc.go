// Package render draws posed marionette skeletons with Ebitengine.
//
// A [Renderer] walks [marionette.Skeleton.DrawOrder] after the world
// transform has been updated, converts region and mesh attachments into
// [ebiten.Vertex] triangles, clips them against active clipping attachments
// and groups consecutive triangles sharing an atlas page and blend mode into
// one DrawTriangles call:
//
//	r := render.NewRenderer(pages)
//	cam := render.NewCamera(1280, 720)
//	cam.YUp = true
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		r.Draw(screen, g.skeleton, cam.GeoM())
//	}
//
// Vertex colors are premultiplied by alpha. Dark (two color) tints are
// ignored.
package render
