// Package insight provides a typed command layer over the Native Mode
// protocol core in the native package.
//
// A Client wraps an opened native.Session and exposes the Native Mode
// command set as Go methods grouped the way the protocol documentation
// groups them: execution and online control, file and job management, image
// transfer, and settings and cell values. Each method validates its
// arguments before any wire interaction, issues exactly one command, and
// translates a non-success status code into a *CommandError carrying the
// device's documented meaning for that code.
//
// Usage example:
//
//	cfg, err := native.NewSessionConfig("192.168.1.10")
//	if err != nil {
//		return err
//	}
//	client, err := insight.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	img, err := client.ReadImage()
//	if err != nil {
//		return err
//	}
//	os.WriteFile("capture.bmp", img.Data, 0o644)
//
// A Manager holds a named registry of clients for talking to several vision
// systems from one process.
package insight
