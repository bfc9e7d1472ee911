// Package scene hosts a gesture arena inside a tree of rectangular nodes.
//
// Nodes that declare detectors become arena members automatically: the
// scene registers them on its next tick, rebuilds them when their detectors
// change and unregisters them once they leave the tree. Pointer input from
// the mouse, touch screens or injected events is hit tested against the
// tree, and the topmost node plus its detector-bearing ancestors form the
// response chain of every down.
//
//	s := scene.NewScene(ctx, gesture.DefaultConfig())
//	list := scene.NewScrollView("list", 320, 480, 320, 2000)
//	list.AddDetector(gesture.NewDetector(1, gesture.KindDefault))
//	s.Root().AddChild(list)
//	scene.Run(s, scene.RunConfig{Title: "list", Width: 320, Height: 480})
//
// Scripts describe a node tree plus the touch input to play against it and
// the outcomes to expect. They drive scenes headlessly through Scene.Play.
package scene
