package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"go.viam.com/depthtruth/assets"
	"go.viam.com/depthtruth/dataset"
)

// ModelsAction lists the model descriptors under the models directory.
func ModelsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	loader, err := assets.NewModelLoader(argOr(c, cfg.Models), newLogger(c, cfg))
	if err != nil {
		return err
	}
	models := loader.Models()
	if len(models) == 0 {
		warningf(c.App.ErrWriter, "no usable model descriptors in %s", argOr(c, cfg.Models))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Name", "File", "Input", "Output", "Normalized"})
	for _, m := range models {
		t.AppendRow(table.Row{
			m.Name,
			m.FileName,
			fmt.Sprintf("%s %s %s", m.DefaultInputNode, shapeString(m.InputShape), m.InputType),
			fmt.Sprintf("%s %s %s", m.DefaultOutputNode, shapeString(m.OutputShape), m.OutputType),
			m.NormalizeInput(),
		})
	}
	t.Render()
	return nil
}

func shapeString(s assets.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}

// ObjectsAction lists the objects of the object file, optionally loading every mesh and
// texture they reference.
func ObjectsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	loader, err := assets.NewObjectLoader(argOr(c, cfg.Objects), newLogger(c, cfg))
	if err != nil {
		return err
	}
	check := c.Bool(objectsFlagCheck)

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	header := table.Row{"Name", "Meshes", "Texture", "Scale", "Animation"}
	if check {
		header = append(header, "Triangles", "Texture size")
	}
	t.AppendHeader(header)
	for _, o := range loader.Objects() {
		o := o
		animation := string(assets.AnimationNone)
		if o.Animation && o.AnimationMode != "" {
			animation = string(o.AnimationMode)
		}
		row := table.Row{o.Name, len(o.Objs), o.Texture, o.ScaleFactor, animation}
		if check {
			triangles := 0
			for i := range o.Objs {
				mesh, err := loader.Mesh(&o, i)
				if err != nil {
					return err
				}
				triangles += mesh.TriangleCount()
			}
			size := "-"
			if o.Texture != "" {
				tex, err := loader.Texture(&o)
				if err != nil {
					return err
				}
				size = fmt.Sprintf("%dx%d", tex.Bounds().Dx(), tex.Bounds().Dy())
			}
			row = append(row, triangles, size)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// SchemaAction prints the JSON schema of a record, or the record names when none is given.
func SchemaAction(c *cli.Context) error {
	if !c.Args().Present() {
		for _, name := range dataset.SchemaNames() {
			printf(c.App.Writer, "%s", name)
		}
		return nil
	}
	schema, err := dataset.Schema(c.Args().First())
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}
